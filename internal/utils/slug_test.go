// internal/utils/slug_test.go
package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// TestSlugifyBasic 测试常规问题文本的归一化
func TestSlugifyBasic(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"Why is the sky blue?", "why-is-the-sky-blue"},
		{"How do airplanes stay in the air?", "how-do-airplanes-stay-in-the-air"},
		{"  Why   do  volcanoes   erupt?  ", "why-do-volcanoes-erupt"},
		{"What's inside a black hole?!", "whats-inside-a-black-hole"},
		{"snake_case_question", "snake-case-question"},
		{"already-hyphenated-question", "already-hyphenated-question"},
	}

	for _, c := range cases {
		if got := Slugify(c.input); got != c.expected {
			t.Errorf("Slugify(%q) = %q, 期望 %q", c.input, got, c.expected)
		}
	}
}

// TestSlugifyDeterministic 同一输入必须产生同一slug
func TestSlugifyDeterministic(t *testing.T) {
	input := "Why do we have to sleep?"
	first := Slugify(input)
	for i := 0; i < 10; i++ {
		if got := Slugify(input); got != first {
			t.Fatalf("Slugify不是确定性的: 第一次%q, 后续%q", first, got)
		}
	}
}

// TestSlugifyLengthBound slug不能超过长度上限且不以连字符结尾
func TestSlugifyLengthBound(t *testing.T) {
	long := strings.Repeat("why does the universe keep expanding ", 5)
	slug := Slugify(long)

	if len(slug) > MaxSlugLength {
		t.Errorf("slug长度%d超过上限%d", len(slug), MaxSlugLength)
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		t.Errorf("slug不应以连字符开头或结尾: %q", slug)
	}
}

// TestSlugifyMultibyteTruncation 截断不能把多字节字符切成非法UTF-8
func TestSlugifyMultibyteTruncation(t *testing.T) {
	// 1个ASCII字节加一串三字节汉字，使上限落在某个汉字中间
	long := "a" + strings.Repeat("为什么天空是蓝色的", 5)
	slug := Slugify(long)

	if len(slug) > MaxSlugLength {
		t.Errorf("slug长度%d超过上限%d", len(slug), MaxSlugLength)
	}
	if !utf8.ValidString(slug) {
		t.Errorf("截断产生了非法UTF-8: %q", slug)
	}
}

// TestSlugifyCollision 归一化后相同的问题共享同一slug（有意的缓存共享）
func TestSlugifyCollision(t *testing.T) {
	a := Slugify("Why is the sky blue?")
	b := Slugify("Why is the sky blue!!!")
	if a != b {
		t.Errorf("标点差异不应产生不同slug: %q vs %q", a, b)
	}
}

// TestSlugifyEdgeCases 空串和纯标点输入
func TestSlugifyEdgeCases(t *testing.T) {
	if got := Slugify(""); got != "" {
		t.Errorf("空输入应产生空slug，实际%q", got)
	}
	if got := Slugify("?!...,"); got != "" {
		t.Errorf("纯标点输入应产生空slug，实际%q", got)
	}
}
