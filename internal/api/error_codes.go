// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorValidation    = "VALIDATION_ERROR"

	// 剧集相关错误
	ErrorEpisodeNotFound  = "EPISODE_NOT_FOUND"
	ErrorEpisodeInvalid   = "EPISODE_INVALID"
	ErrorGenerationFailed = "GENERATION_FAILED"
	ErrorQuestionInvalid  = "QUESTION_INVALID"
	ErrorSchemaViolation  = "SCHEMA_VIOLATION"

	// 语音相关错误
	ErrorAudioNotFound      = "AUDIO_NOT_FOUND"
	ErrorSynthesisFailed    = "SYNTHESIS_FAILED"
	ErrorSynthesisRateLimit = "SYNTHESIS_RATE_LIMITED"
	ErrorTTSUnavailable     = "TTS_UNAVAILABLE"

	// 转写相关错误
	ErrorTranscribeFailed      = "TRANSCRIBE_FAILED"
	ErrorTranscribeUnavailable = "TRANSCRIBE_UNAVAILABLE"
	ErrorFileUploadFailed      = "FILE_UPLOAD_FAILED"

	// LLM服务相关错误
	ErrorLLMServiceUnavailable = "LLM_SERVICE_UNAVAILABLE"
	ErrorLLMConfigInvalid      = "LLM_CONFIG_INVALID"
)
