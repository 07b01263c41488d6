// internal/tts/interface.go
package tts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// 错误定义
var ErrUnknownProvider = errors.New("未知的语音合成提供者")

// SynthesisError 语音合成失败
// 携带足够的信息供调用方区分限流和其他失败：
// 限流会让音频缓存层立即中止整个遍历，其他失败只跳过当前场景。
type SynthesisError struct {
	StatusCode int
	Message    string
}

// Error 实现 error 接口
func (e *SynthesisError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("语音合成失败(%d): %s", e.StatusCode, e.Message)
	}
	return "语音合成失败: " + e.Message
}

// IsRateLimited 判断失败是否由限流/配额引起
func (e *SynthesisError) IsRateLimited() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "rate") || strings.Contains(msg, "limit") ||
		strings.Contains(msg, "quota")
}

// IsRateLimited 判断任意错误是否携带限流特征
func IsRateLimited(err error) bool {
	var synthErr *SynthesisError
	if errors.As(err, &synthErr) {
		return synthErr.IsRateLimited()
	}
	return false
}

// Speaker 定义语音合成后端必须实现的能力接口
// 音频缓存层只依赖这个契约，实际后端可替换
type Speaker interface {
	// 初始化提供者，传入配置
	Initialize(config map[string]string) error

	// 获取提供者名称
	GetName() string

	// 为一段台词合成语音，返回固定编码的音频字节
	Speak(ctx context.Context, text, voiceID, emotion string) ([]byte, error)
}

// 注册表和工厂函数类型
type SpeakerFactory func() Speaker

var speakers = make(map[string]SpeakerFactory)

// Register 注册提供者工厂
func Register(name string, factory SpeakerFactory) {
	speakers[name] = factory
}

// GetSpeaker 创建指定名称的提供者实例
func GetSpeaker(name string, config map[string]string) (Speaker, error) {
	factory, exists := speakers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	speaker := factory()
	err := speaker.Initialize(config)
	return speaker, err
}

// ListSpeakers 返回所有已注册的提供者名称
func ListSpeakers() []string {
	names := make([]string, 0, len(speakers))
	for name := range speakers {
		names = append(names, name)
	}
	return names
}
