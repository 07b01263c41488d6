// internal/utils/slug.go
package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSlugLength slug的最大长度
const MaxSlugLength = 60

// Slugify 将自由文本问题转换为文件系统安全的确定性标识符
// 小写化、去掉标点、把空白/下划线/连字符折叠为单个连字符，
// 截断到MaxSlugLength并去掉首尾连字符。
// 不同问题归一化到同一slug时共享一个缓存槽位，这是有意的缓存共享策略。
func Slugify(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	t = b.String()

	// 折叠分隔符
	var out strings.Builder
	out.Grow(len(t))
	pendingSep := false
	for _, r := range t {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			pendingSep = out.Len() > 0
			continue
		}
		if pendingSep {
			out.WriteByte('-')
			pendingSep = false
		}
		out.WriteRune(r)
	}

	s := out.String()
	if len(s) > MaxSlugLength {
		// 截断点回退到rune边界，避免把多字节字符切成非法UTF-8
		cut := MaxSlugLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return strings.Trim(s, "-")
}
