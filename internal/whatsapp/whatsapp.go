// Package whatsapp 根据购物车内容生成 wa.me 询价链接。
package whatsapp

import (
	"errors"
	"strings"

	"github.com/tinythreads/internal/cart"
)

const (
	DefaultDomain = "https://wa.me"
	messageHeader = "I would like to enquire the price of the following products:\n\n"
)

// NoticeKind 提示级别
type NoticeKind string

const (
	NoticeError NoticeKind = "error"
	NoticeInfo  NoticeKind = "info"
)

// Notice 面向用户的提示，生成链接失败时返回
type Notice struct {
	Kind        NoticeKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

func (n *Notice) Error() string {
	return n.Title
}

var (
	// ErrNotConfigured 未配置 WhatsApp 号码
	ErrNotConfigured = &Notice{
		Kind:        NoticeError,
		Title:       "WhatsApp number not configured.",
		Description: "The WhatsApp contact number has not been set up correctly.",
	}
	// ErrCartEmpty 购物车为空
	ErrCartEmpty = &Notice{
		Kind:        NoticeInfo,
		Title:       "Your cart is empty",
		Description: "Add items to your cart to purchase on WhatsApp.",
	}
)

// Config 链接参数
type Config struct {
	Phone  string
	Origin string // 站点地址，用于拼接商品链接
	Domain string // 默认 https://wa.me
}

// Compose 生成链接；号码缺失或购物车为空时返回 *Notice
func Compose(items []cart.LineItem, cfg Config) (string, error) {
	phone := strings.TrimSpace(cfg.Phone)
	if phone == "" {
		return "", ErrNotConfigured
	}
	if len(items) == 0 {
		return "", ErrCartEmpty
	}
	domain := strings.TrimRight(strings.TrimSpace(cfg.Domain), "/")
	if domain == "" {
		domain = DefaultDomain
	}
	return domain + "/" + phone + "?text=" + EncodeURIComponent(Message(items, cfg.Origin)), nil
}

// Message 生成未编码的消息正文
func Message(items []cart.LineItem, origin string) string {
	origin = strings.TrimRight(origin, "/")
	var b strings.Builder
	b.WriteString(messageHeader)
	for _, item := range items {
		b.WriteString("Product Name: ")
		b.WriteString(item.Name)
		b.WriteString("\nProduct ID: ")
		b.WriteString(item.ID)
		b.WriteString("\nProduct Link: ")
		b.WriteString(origin)
		b.WriteString("/products/")
		b.WriteString(item.ID)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// Open 生成链接并交给 opener（例如跳转）；失败时不会调用 opener
func Open(items []cart.LineItem, cfg Config, opener func(url string)) error {
	url, err := Compose(items, cfg)
	if err != nil {
		return err
	}
	if opener != nil {
		opener(url)
	}
	return nil
}

// AsNotice 提取错误中的 Notice
func AsNotice(err error) (*Notice, bool) {
	var notice *Notice
	if errors.As(err, &notice) {
		return notice, true
	}
	return nil, false
}
