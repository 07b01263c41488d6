// internal/stt/interface.go
package stt

import (
	"context"
	"errors"
)

// TranscriptionRequest 一次语音转写请求
type TranscriptionRequest struct {
	Audio    []byte // 音频字节
	Filename string // 用于推断格式的文件名
	Language string // 语言提示，如"en"
	Prompt   string // 领域引导短语，提高专有词识别率
}

// Transcriber 定义语音转写后端的能力接口
// 转写结果作为问题文本喂给生成链
type Transcriber interface {
	// 初始化提供者，传入配置
	Initialize(config map[string]string) error

	// 获取提供者名称
	GetName() string

	// 转写音频为纯文本
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)
}

// 注册表和工厂函数类型
type TranscriberFactory func() Transcriber

var transcribers = make(map[string]TranscriberFactory)

// Register 注册提供者工厂
func Register(name string, factory TranscriberFactory) {
	transcribers[name] = factory
}

// GetTranscriber 创建指定名称的提供者实例
func GetTranscriber(name string, config map[string]string) (Transcriber, error) {
	factory, exists := transcribers[name]
	if !exists {
		return nil, errors.New("未知的语音转写提供者: " + name)
	}

	transcriber := factory()
	err := transcriber.Initialize(config)
	return transcriber, err
}
