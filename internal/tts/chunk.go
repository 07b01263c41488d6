// internal/tts/chunk.go
package tts

import "strings"

// SplitText 把超长文本切成不超过maxLen的片段
// 优先在句末标点处切分，其次退到逗号/分号，最后退到空格。
// 切分属于适配器的实现细节，缓存层对此无感知。
func SplitText(text string, maxLen int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	remaining := text
	for len(remaining) > maxLen {
		window := remaining[:maxLen]

		cut := lastIndexAny(window, ".!?")
		if cut < 0 {
			cut = lastIndexAny(window, ",;:")
		}
		if cut < 0 {
			cut = strings.LastIndexByte(window, ' ')
		}
		if cut <= 0 {
			// 没有任何合适的边界，硬切
			cut = maxLen - 1
		}

		chunks = append(chunks, strings.TrimSpace(remaining[:cut+1]))
		remaining = strings.TrimSpace(remaining[cut+1:])
	}

	if remaining != "" {
		chunks = append(chunks, remaining)
	}
	return chunks
}

// lastIndexAny 返回window中最后一个属于chars的字节位置
func lastIndexAny(window, chars string) int {
	for i := len(window) - 1; i >= 0; i-- {
		if strings.IndexByte(chars, window[i]) >= 0 {
			return i
		}
	}
	return -1
}
