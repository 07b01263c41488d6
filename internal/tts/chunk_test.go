// internal/tts/chunk_test.go
package tts

import (
	"strings"
	"testing"
)

// TestSplitTextShort 不超长的文本原样返回
func TestSplitTextShort(t *testing.T) {
	chunks := SplitText("Hello there!", 100)
	if len(chunks) != 1 || chunks[0] != "Hello there!" {
		t.Fatalf("短文本应原样返回单块，实际%v", chunks)
	}
}

// TestSplitTextEmpty 空文本返回nil
func TestSplitTextEmpty(t *testing.T) {
	if chunks := SplitText("   ", 100); chunks != nil {
		t.Fatalf("空白文本应返回nil，实际%v", chunks)
	}
}

// TestSplitTextSentenceBoundary 优先在句末标点处切分
func TestSplitTextSentenceBoundary(t *testing.T) {
	text := "First sentence. Second sentence is a bit longer. Third one."
	chunks := SplitText(text, 40)

	for _, chunk := range chunks {
		if len(chunk) > 40 {
			t.Errorf("块长度%d超过上限40: %q", len(chunk), chunk)
		}
	}
	if chunks[0] != "First sentence." {
		t.Errorf("应在句号处切分，首块实际%q", chunks[0])
	}
}

// TestSplitTextCommaFallback 没有句末标点时退到逗号
func TestSplitTextCommaFallback(t *testing.T) {
	text := "one two three four, five six seven eight nine ten eleven"
	chunks := SplitText(text, 30)

	if len(chunks) < 2 {
		t.Fatalf("超长文本应被切分，实际%v", chunks)
	}
	if chunks[0] != "one two three four," {
		t.Errorf("应在逗号处切分，首块实际%q", chunks[0])
	}
}

// TestSplitTextHardCut 无任何边界时硬切且不丢内容
func TestSplitTextHardCut(t *testing.T) {
	text := strings.Repeat("a", 25)
	chunks := SplitText(text, 10)

	var total int
	for _, chunk := range chunks {
		if len(chunk) > 10 {
			t.Errorf("块长度%d超过上限10", len(chunk))
		}
		total += len(chunk)
	}
	if total != 25 {
		t.Errorf("硬切不应丢失内容: 期望25字符，实际%d", total)
	}
}
