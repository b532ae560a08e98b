// Package slug 把展示名称转换为 URL 友好的标识。
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	fractionPattern = regexp.MustCompile(`(\d+)/(\d+)`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)
	apostrophes     = strings.NewReplacer("'", "", "’", "", "‘", "")
)

// Generate 生成 slug，例如 "3/4 Denims" -> "34-denims"
func Generate(name string) string {
	s := strings.ToLower(name)
	s = fractionPattern.ReplaceAllString(s, "$1$2")
	s = apostrophes.Replace(s)
	s = stripAccents(s)
	s = nonAlnumPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Humanize 把 slug 还原为按单词首字母大写的名称，用于按名称查找分类。
// cases.Caser 带内部状态，不能跨 goroutine 共用，每次调用单独创建
func Humanize(slug string) string {
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
