// internal/services/llm_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/Corphon/WonderBotsMCP/internal/config"
	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
	"github.com/Corphon/WonderBotsMCP/internal/llm"
	"github.com/Corphon/WonderBotsMCP/internal/utils"
)

// LLMService 封装对LLM提供者的访问
// 生成链只通过它发起调用，提供者可在运行时热切换
type LLMService struct {
	provider     llm.Provider
	defaultModel string

	providerMutex sync.RWMutex
	isReady       bool
	readyState    string
}

// NewLLMService 根据当前配置创建LLM服务
func NewLLMService() *LLMService {
	cfg := config.GetCurrentConfig()

	service := &LLMService{
		readyState: "初始化中",
	}

	if cfg.LLMConfig == nil || cfg.LLMConfig["api_key"] == "" {
		service.readyState = "API密钥未配置"
		return service
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		service.readyState = fmt.Sprintf("提供者初始化失败: %v", err)
		utils.GetLogger().Error("LLM提供者初始化失败", map[string]interface{}{
			"provider": cfg.LLMProvider,
			"error":    err.Error(),
		})
		return service
	}

	service.provider = provider
	service.defaultModel = cfg.LLMModel
	service.isReady = true
	service.readyState = "就绪"
	return service
}

// NewEmptyLLMService 创建未配置的LLM服务（测试和延迟配置用）
func NewEmptyLLMService() *LLMService {
	return &LLMService{readyState: "未配置"}
}

// NewLLMServiceWithProvider 用指定提供者创建LLM服务
func NewLLMServiceWithProvider(provider llm.Provider, model string) *LLMService {
	return &LLMService{
		provider:     provider,
		defaultModel: model,
		isReady:      true,
		readyState:   "就绪",
	}
}

// IsReady 返回服务是否可用
func (s *LLMService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.isReady
}

// ReadyState 返回当前状态描述
func (s *LLMService) ReadyState() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.readyState
}

// DefaultModel 返回默认模型名
func (s *LLMService) DefaultModel() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.defaultModel
}

// UpdateProvider 热切换LLM提供者
func (s *LLMService) UpdateProvider(providerName string, providerConfig map[string]string) error {
	provider, err := llm.GetProvider(providerName, providerConfig)
	if err != nil {
		return err
	}

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	s.provider = provider
	if model := providerConfig["default_model"]; model != "" {
		s.defaultModel = model
	}
	s.isReady = true
	s.readyState = "就绪"
	return nil
}

// CreateStructuredCompletion 发起一次要求结构化输出的生成调用
// 模型返回的自由文本先经过cleanJSONString剥离围栏和噪声，再解析到outputSchema。
// 解析失败作为SchemaError返回，核心内部不自动重试——
// 自动重试会无上限地消耗第二次付费调用，重试决策留给调用方。
func (s *LLMService) CreateStructuredCompletion(ctx context.Context, prompt, systemPrompt string, temperature float32, maxTokens int, outputSchema interface{}) error {
	s.providerMutex.RLock()
	if !s.isReady || s.provider == nil {
		state := s.readyState
		s.providerMutex.RUnlock()
		return apperrors.NewProcessingError("LLM服务未就绪: "+state, nil)
	}
	provider := s.provider
	model := s.defaultModel
	s.providerMutex.RUnlock()

	req := llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		Model:        model,
	}

	resp, err := provider.CompleteText(ctx, req)
	if err != nil {
		return err
	}

	text := cleanJSONString(resp.Text)
	if err := json.Unmarshal([]byte(text), outputSchema); err != nil {
		return apperrors.NewSchemaError("模型输出不符合约定的结构", err)
	}

	return nil
}

// jsonNoiseReplacer 统一替换常见的围栏标记和噪声字符
var jsonNoiseReplacer = strings.NewReplacer(
	"```json", "",
	"```", "",
	"\uFEFF", "",
	" ", " ",
	" ", "\n",
	" ", "\n",
)

// cleanJSONString 清理JSON字符串，去除前后非JSON内容
// 模型经常把结构化输出包在解释性文字或markdown围栏里，
// 这里先剥离围栏，再定位第一个 { 或 [，用括号配对找到结构化载荷的边界。
func cleanJSONString(s string) string {
	if s == "" {
		return s
	}

	s = jsonNoiseReplacer.Replace(s)
	s = strings.TrimSpace(s)

	// 移除零宽字符及除换行/制表符外的控制字符
	s = strings.Map(func(r rune) rune {
		switch r {
		case '​', '‌', '‍', '⁠', '\uFEFF':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	// 查找第一个 { 或 [，将其之前的内容全部丢弃
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}

	s = strings.TrimSpace(s[start:])
	if s == "" {
		return s
	}

	isArray := s[0] == '['

	// 简单的括号计数匹配
	balance := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if isArray {
				if char == '[' {
					balance++
				} else if char == ']' {
					balance--
				}
			} else {
				if char == '{' {
					balance++
				} else if char == '}' {
					balance--
				}
			}

			if balance == 0 {
				// 找到了匹配的结束符
				return strings.TrimSpace(s[:i+1])
			}
		}
	}

	// 没找到匹配的结束符，原样返回让解析器报错
	return s
}
