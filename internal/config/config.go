// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// 当前配置的单例实例
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig 包含应用程序的所有配置
type AppConfig struct {
	// 基础配置
	Port       string `json:"port"`
	DataDir    string `json:"data_dir"`
	LibraryDir string `json:"library_dir"`
	StaticDir  string `json:"static_dir"`
	LogDir     string `json:"log_dir"`
	DebugMode  bool   `json:"debug_mode"`

	// LLM相关配置
	LLMProvider string            `json:"llm_provider"`
	LLMModel    string            `json:"llm_model"`
	LLMConfig   map[string]string `json:"llm_config"`

	// 语音合成相关配置
	TTSProvider string `json:"tts_provider"`
	TTSAPIKey   string `json:"tts_api_key,omitempty"`
	// 相邻两次合成请求之间的最小间隔（毫秒），用于尊重后端限流
	TTSPacingMs int `json:"tts_pacing_ms"`
}

// Config 存储从环境加载的基础配置
type Config struct {
	Port        string
	GroqAPIKey  string
	TTSAPIKey   string
	LLMModel    string
	DataDir     string
	LibraryDir  string
	StaticDir   string
	LogDir      string
	DebugMode   bool
	TTSPacingMs int
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		TTSAPIKey:   getEnv("ELEVENLABS_API_KEY", ""),
		LLMModel:    getEnv("WONDERBOTS_MODEL", "openai/gpt-oss-120b"),
		DataDir:     getEnvPath("DATA_DIR", "data"),
		LibraryDir:  getEnv("LIBRARY_DIR", "library"),
		StaticDir:   getEnvPath("STATIC_DIR", "static"),
		LogDir:      getEnvPath("LOG_DIR", "logs"),
		DebugMode:   getEnvBool("DEBUG_MODE", true),
		TTSPacingMs: getEnvInt("TTS_PACING_MS", 500),
	}

	if config.GroqAPIKey == "" {
		// 只记录警告，不返回错误
		log.Println("警告: 未设置GROQ_API_KEY，生成功能在配置密钥前不可用")
	}
	if config.TTSAPIKey == "" {
		log.Println("警告: 未设置ELEVENLABS_API_KEY，语音合成功能不可用")
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err = os.MkdirAll(path, 0755)
		if err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt 获取整数类型环境变量
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// InitConfig 初始化配置管理器
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	// 加载基础配置
	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = &AppConfig{
		Port:        baseConfig.Port,
		DataDir:     baseConfig.DataDir,
		LibraryDir:  baseConfig.LibraryDir,
		StaticDir:   baseConfig.StaticDir,
		LogDir:      baseConfig.LogDir,
		DebugMode:   baseConfig.DebugMode,
		LLMProvider: "groq",
		LLMModel:    baseConfig.LLMModel,
		LLMConfig: map[string]string{
			"api_key":       baseConfig.GroqAPIKey,
			"default_model": baseConfig.LLMModel,
		},
		TTSProvider: "elevenlabs",
		TTSAPIKey:   baseConfig.TTSAPIKey,
		TTSPacingMs: baseConfig.TTSPacingMs,
	}

	// 尝试从文件加载已保存的配置
	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		data, err := os.ReadFile(configFile)
		if err == nil {
			var savedConfig AppConfig
			if json.Unmarshal(data, &savedConfig) == nil {
				// 合并配置：保留文件中的提供商设置，但使用最新的基础配置
				savedConfig.Port = baseConfig.Port
				savedConfig.DataDir = baseConfig.DataDir
				savedConfig.LibraryDir = baseConfig.LibraryDir
				savedConfig.StaticDir = baseConfig.StaticDir
				savedConfig.LogDir = baseConfig.LogDir
				savedConfig.DebugMode = baseConfig.DebugMode

				// 如果文件中没有密钥，使用环境变量的密钥
				if savedConfig.LLMConfig != nil && savedConfig.LLMConfig["api_key"] == "" {
					savedConfig.LLMConfig["api_key"] = baseConfig.GroqAPIKey
				}
				if savedConfig.TTSAPIKey == "" {
					savedConfig.TTSAPIKey = baseConfig.TTSAPIKey
				}
				if savedConfig.TTSPacingMs <= 0 {
					savedConfig.TTSPacingMs = baseConfig.TTSPacingMs
				}

				currentConfig = &savedConfig
			}
		}
	}

	// 保存初始配置到文件
	return SaveConfig()
}

// GetCurrentConfig 返回当前配置的副本
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		// 紧急情况，返回一个基本配置
		baseConfig, _ := Load()
		return &AppConfig{
			Port:        baseConfig.Port,
			DataDir:     baseConfig.DataDir,
			LibraryDir:  baseConfig.LibraryDir,
			StaticDir:   baseConfig.StaticDir,
			LogDir:      baseConfig.LogDir,
			DebugMode:   baseConfig.DebugMode,
			LLMProvider: "groq",
			LLMModel:    baseConfig.LLMModel,
			LLMConfig: map[string]string{
				"api_key":       baseConfig.GroqAPIKey,
				"default_model": baseConfig.LLMModel,
			},
			TTSProvider: "elevenlabs",
			TTSAPIKey:   baseConfig.TTSAPIKey,
			TTSPacingMs: baseConfig.TTSPacingMs,
		}
	}

	// 返回配置的副本
	configCopy := *currentConfig
	return &configCopy
}

// UpdateLLMConfig 更新LLM配置
func UpdateLLMConfig(provider string, config map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("配置系统未初始化")
	}

	currentConfig.LLMProvider = provider
	currentConfig.LLMConfig = config

	return SaveConfig()
}

// SaveConfig 保存当前配置到文件
func SaveConfig() error {
	if currentConfig == nil {
		return fmt.Errorf("没有配置可保存")
	}

	// 确保目录存在
	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}

	// 序列化并保存
	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
