// internal/services/config_service.go
package services

import (
	"sync"
	"time"

	"github.com/Corphon/WonderBotsMCP/internal/config"
)

// ConfigService 提供配置管理功能
type ConfigService struct {
	// 缓存最近获取的配置，减少反复访问底层存储
	cachedConfig *config.AppConfig

	// 配置更新时间
	lastUpdated time.Time

	// 互斥锁保护内部状态
	mu sync.RWMutex
}

// NewConfigService 创建配置服务实例
func NewConfigService() *ConfigService {
	return &ConfigService{
		cachedConfig: config.GetCurrentConfig(),
		lastUpdated:  time.Now(),
	}
}

// GetCurrentConfig 获取当前配置
func (s *ConfigService) GetCurrentConfig() *config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cachedConfig == nil {
		s.cachedConfig = config.GetCurrentConfig()
	}
	return s.cachedConfig
}

// UpdateLLMConfig 更新LLM提供商和配置并刷新缓存
func (s *ConfigService) UpdateLLMConfig(provider string, configMap map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := config.UpdateLLMConfig(provider, configMap); err != nil {
		return err
	}

	s.cachedConfig = config.GetCurrentConfig()
	s.lastUpdated = time.Now()
	return nil
}
