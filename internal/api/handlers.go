// internal/api/handlers.go
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
	"github.com/Corphon/WonderBotsMCP/internal/services"
	"github.com/Corphon/WonderBotsMCP/internal/stt"
	"github.com/Corphon/WonderBotsMCP/internal/utils"
)

// Handler 处理API请求
type Handler struct {
	// 核心服务
	EpisodeService  *services.EpisodeService  // 剧集生成服务
	LibraryService  *services.LibraryService  // 剧集存储服务
	AudioService    *services.AudioService    // 语音缓存服务
	ProgressService *services.ProgressService // 进度跟踪服务
	ConfigService   *services.ConfigService   // 配置服务
	Transcriber     stt.Transcriber           // 语音转写后端（可为nil）
	Response        *ResponseHelper           // 响应助手
}

// NewHandler 创建API处理器
func NewHandler(
	episodeService *services.EpisodeService,
	libraryService *services.LibraryService,
	audioService *services.AudioService,
	progressService *services.ProgressService,
	configService *services.ConfigService,
	transcriber stt.Transcriber,
) *Handler {
	return &Handler{
		EpisodeService:  episodeService,
		LibraryService:  libraryService,
		AudioService:    audioService,
		ProgressService: progressService,
		ConfigService:   configService,
		Transcriber:     transcriber,
		Response:        NewResponseHelper(),
	}
}

// GenerateEpisodeRequest 生成剧集的请求结构
type GenerateEpisodeRequest struct {
	Question string `json:"question"` // 孩子的问题
}

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	cfg := h.ConfigService.GetCurrentConfig()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  cfg.LLMModel,
	})
}

// Stats 处理 GET /api/stats，返回运行期指标快照
func (h *Handler) Stats(c *gin.Context) {
	h.Response.Success(c, utils.GetMetricsCollector().GetMetrics())
}

// GenerateEpisode 处理 POST /api/generate
// 先查缓存复用，未命中才运行两阶段生成链
func (h *Handler) GenerateEpisode(c *gin.Context) {
	var req GenerateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.ValidationError(c, "请求体不是合法JSON")
		return
	}

	episode, reused, err := h.EpisodeService.GenerateOrReuse(c.Request.Context(), req.Question)
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	message := "剧集生成完成"
	if reused {
		message = "命中缓存"
	}
	h.Response.Success(c, episode, message)
}

// ListEpisodes 处理 GET /api/episodes，返回资料库摘要
func (h *Handler) ListEpisodes(c *gin.Context) {
	summaries, err := h.LibraryService.List()
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}
	h.Response.Success(c, summaries)
}

// GetEpisode 处理 GET /api/episodes/:slug
func (h *Handler) GetEpisode(c *gin.Context) {
	episode, err := h.LibraryService.Load(c.Param("slug"))
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}
	h.Response.Success(c, episode)
}

// GetSceneAudio 处理 GET /api/episodes/:slug/audio/:key
// 直接返回MP3字节，未缓存返回404
func (h *Handler) GetSceneAudio(c *gin.Context) {
	audio, err := h.LibraryService.FetchAudio(c.Param("slug"), c.Param("key"))
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// SynthesizeEpisode 处理 POST /api/episodes/:slug/synthesize
// 异步启动语音补全遍历，立即返回任务ID供进度订阅
func (h *Handler) SynthesizeEpisode(c *gin.Context) {
	slug := c.Param("slug")

	episode, err := h.LibraryService.Load(slug)
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	taskID := uuid.New().String()
	tracker := h.ProgressService.CreateTracker(taskID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		generated, err := h.AudioService.SynthesizeMissingTracked(ctx, episode, tracker)
		if err != nil {
			utils.GetLogger().Error("语音补全失败", map[string]interface{}{
				"slug": slug, "generated": generated, "error": err.Error(),
			})
			tracker.Fail(err.Error())
			return
		}
		tracker.Complete("语音补全完成")
	}()

	h.Response.Success(c, gin.H{
		"task_id":  taskID,
		"slug":     slug,
		"eligible": episode.EligibleSceneCount(),
		"cached":   len(episode.AudioCache),
	}, "语音补全已启动")
}

// Transcribe 处理 POST /api/transcribe
// 把上传的音频转写为问题文本，作为生成链的备用输入
func (h *Handler) Transcribe(c *gin.Context) {
	if h.Transcriber == nil {
		h.Response.Error(c, http.StatusServiceUnavailable, ErrorTranscribeUnavailable, "语音转写后端未配置")
		return
	}

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		h.Response.ValidationError(c, "缺少audio文件字段")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, 10<<20))
	if err != nil {
		h.Response.HandleServiceError(c, apperrors.NewProcessingError("读取上传音频失败", err))
		return
	}

	text, err := h.Transcriber.Transcribe(c.Request.Context(), stt.TranscriptionRequest{
		Audio:    audio,
		Filename: header.Filename,
		Language: c.DefaultPostForm("language", "en"),
		Prompt:   "A child asking a science question for the WonderBots show.",
	})
	if err != nil {
		h.Response.HandleServiceError(c, apperrors.NewProcessingError("语音转写失败", err))
		return
	}

	h.Response.Success(c, gin.H{"question": text})
}
