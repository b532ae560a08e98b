package whatsapp

import "strings"

const upperHex = "0123456789ABCDEF"

// EncodeURIComponent 与浏览器 encodeURIComponent 相同：
// 保留 A-Z a-z 0-9 - _ . ! ~ * ' ( )，其余按 UTF-8 字节转成 %XX。
// url.QueryEscape 会把空格编码为 +，且会转义 ! ' ( ) *，结果不同。
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
