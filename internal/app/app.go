// internal/app/app.go
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/Corphon/WonderBotsMCP/internal/config"
	"github.com/Corphon/WonderBotsMCP/internal/di"
	"github.com/Corphon/WonderBotsMCP/internal/services"
	"github.com/Corphon/WonderBotsMCP/internal/storage"
	"github.com/Corphon/WonderBotsMCP/internal/stt"
	"github.com/Corphon/WonderBotsMCP/internal/tts"

	// 注册内置的LLM/TTS/STT提供者
	_ "github.com/Corphon/WonderBotsMCP/internal/llm/providers/groq"
	_ "github.com/Corphon/WonderBotsMCP/internal/llm/providers/openrouter"
	_ "github.com/Corphon/WonderBotsMCP/internal/stt/providers/whisper"
	_ "github.com/Corphon/WonderBotsMCP/internal/tts/providers/elevenlabs"
)

// InitServices 按依赖顺序初始化所有服务并注册到容器
// 密钥缺失时相关服务降级为不可用状态而不是启动失败
func InitServices() error {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	// 1. LLM服务（无密钥时保持未就绪状态）
	llmService := services.NewLLMService()
	container.Register("llm", llmService)
	if !llmService.IsReady() {
		log.Printf("⚠️ LLM服务未就绪: %s", llmService.ReadyState())
	}

	// 2. 剧集库存储
	fileStorage, err := storage.NewFileStorage(cfg.LibraryDir)
	if err != nil {
		return fmt.Errorf("初始化剧集库存储失败: %w", err)
	}
	libraryService := services.NewLibraryService(fileStorage)
	container.Register("library", libraryService)

	// 3. 语音分配服务（纯逻辑，无外部依赖）
	voiceService := services.NewVoiceService()
	container.Register("voice", voiceService)

	// 4. 剧集生成服务
	episodeService := services.NewEpisodeService(llmService, libraryService, voiceService)
	container.Register("episode", episodeService)

	// 5. 语音合成服务（无密钥时speaker为nil，合成请求会返回错误）
	var speaker tts.Speaker
	if cfg.TTSAPIKey != "" {
		speaker, err = tts.GetSpeaker(cfg.TTSProvider, map[string]string{
			"api_key": cfg.TTSAPIKey,
		})
		if err != nil {
			log.Printf("⚠️ 语音合成后端初始化失败: %v", err)
			speaker = nil
		}
	} else {
		log.Println("⚠️ 未配置语音合成密钥，合成功能不可用")
	}
	pacing := time.Duration(cfg.TTSPacingMs) * time.Millisecond
	audioService := services.NewAudioService(speaker, libraryService, voiceService, pacing)
	container.Register("audio", audioService)

	// 6. 语音转写后端（可选）
	if cfg.LLMConfig != nil && cfg.LLMConfig["api_key"] != "" {
		transcriber, err := stt.GetTranscriber("whisper", map[string]string{
			"api_key": cfg.LLMConfig["api_key"],
		})
		if err != nil {
			log.Printf("⚠️ 语音转写后端初始化失败: %v", err)
		} else {
			container.Register("transcriber", transcriber)
		}
	}

	// 7. 其他服务
	container.Register("progress", services.NewProgressService())
	container.Register("config", services.NewConfigService())

	return nil
}
