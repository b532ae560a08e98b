// Package i18n 提供接口提示文案的多语言查找。
package i18n

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	LocaleEN      = "en"
	DefaultLocale = LocaleEN
	// QueryKey 允许通过 ?lang= 覆盖 Accept-Language
	QueryKey = "lang"
)

var mu sync.RWMutex

var (
	catalogs = map[string]map[string]string{
		LocaleEN: messagesEN,
	}

	matcher = buildMatcher()
)

// Register 注册或覆盖某个语言的文案
func Register(locale string, messages map[string]string) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" || len(messages) == 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	existing, ok := catalogs[locale]
	if !ok {
		existing = make(map[string]string, len(messages))
		catalogs[locale] = existing
	}
	for k, v := range messages {
		existing[k] = v
	}
	matcher = buildMatcherLocked()
}

// T 查找文案，缺失时回退到默认语言，再回退到 key 本身
func T(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()
	if msgs, ok := catalogs[locale]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 查找文案并格式化
func Sprintf(locale, key string, args ...any) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// ResolveLocale 从请求中解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query(QueryKey)); lang != "" {
		return Match(lang)
	}
	return Match(c.GetHeader("Accept-Language"))
}

// Match 将 Accept-Language 取值匹配为已注册的语言
func Match(acceptLanguage string) string {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	mu.RLock()
	m := matcher
	mu.RUnlock()
	_, idx, conf := m.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	return supportedLocales()[idx]
}

func supportedLocales() []string {
	mu.RLock()
	defer mu.RUnlock()
	return localesLocked()
}

func localesLocked() []string {
	locales := []string{DefaultLocale}
	for locale := range catalogs {
		if locale != DefaultLocale {
			locales = append(locales, locale)
		}
	}
	// map 遍历无序，默认语言之外按字典序固定下标
	sort.Strings(locales[1:])
	return locales
}

func buildMatcher() language.Matcher {
	return buildMatcherLocked()
}

func buildMatcherLocked() language.Matcher {
	locales := localesLocked()
	tags := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		tags = append(tags, language.Make(locale))
	}
	return language.NewMatcher(tags)
}
