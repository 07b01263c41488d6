// internal/api/router.go
package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/WonderBotsMCP/internal/config"
	"github.com/Corphon/WonderBotsMCP/internal/di"
	"github.com/Corphon/WonderBotsMCP/internal/services"
	"github.com/Corphon/WonderBotsMCP/internal/stt"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	// 获取配置
	cfg := config.GetCurrentConfig()

	// 获取依赖注入容器
	container := di.GetContainer()

	// ✅ 只从容器获取服务，不再创建新实例
	episodeService, ok := container.Get("episode").(*services.EpisodeService)
	if !ok {
		return nil, fmt.Errorf("剧集服务未正确初始化")
	}

	libraryService, ok := container.Get("library").(*services.LibraryService)
	if !ok {
		return nil, fmt.Errorf("剧集库服务未正确初始化")
	}

	audioService, ok := container.Get("audio").(*services.AudioService)
	if !ok {
		return nil, fmt.Errorf("语音服务未正确初始化")
	}

	progressService, ok := container.Get("progress").(*services.ProgressService)
	if !ok {
		return nil, fmt.Errorf("进度服务未正确初始化")
	}

	configService, ok := container.Get("config").(*services.ConfigService)
	if !ok {
		return nil, fmt.Errorf("配置服务未正确初始化")
	}

	// 转写后端可选，密钥缺失时为nil
	transcriber, _ := container.Get("transcriber").(stt.Transcriber)

	// ✅ 创建API处理器 - 只传递从容器获取的服务
	handler := NewHandler(
		episodeService,
		libraryService,
		audioService,
		progressService,
		configService,
		transcriber,
	)

	// 创建路由
	r := gin.Default()

	// 启用CORS
	r.Use(corsMiddleware())
	r.Use(requestLogger())

	// HTTPS重定向（生产环境）
	if !cfg.DebugMode {
		r.Use(func(c *gin.Context) {
			if c.Request.Header.Get("X-Forwarded-Proto") != "https" {
				c.Redirect(http.StatusPermanentRedirect,
					"https://"+c.Request.Host+c.Request.URL.Path)
				return
			}
			c.Next()
		})
	}

	// 静态文件服务（前端播放器）
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		r.Static("/static", cfg.StaticDir)
		r.StaticFile("/", cfg.StaticDir+"/index.html")
	}

	// 健康检查
	r.GET("/health", handler.Health)

	// WebSocket 进度推送
	r.GET("/ws/progress/:task_id", handler.ProgressWebSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	api.Use(DefaultRateLimit())
	{
		// 剧集生成（昂贵操作，单独限流）
		api.POST("/generate", GenerateRateLimit(), handler.GenerateEpisode)

		// ===============================
		// 剧集库相关路由
		// ===============================
		episodesGroup := api.Group("/episodes")
		{
			episodesGroup.GET("", handler.ListEpisodes)
			episodesGroup.GET("/:slug", handler.GetEpisode)
			episodesGroup.GET("/:slug/audio/:key", handler.GetSceneAudio)
			episodesGroup.POST("/:slug/synthesize", handler.SynthesizeEpisode)
		}

		// 语音转写
		api.POST("/transcribe", handler.Transcribe)

		// 运行期指标
		api.GET("/stats", handler.Stats)
	}

	return r, nil
}
