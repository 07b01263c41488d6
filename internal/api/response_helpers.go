// internal/api/response_helpers.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
)

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// getRequestID 获取或生成请求ID
func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
		return requestID
	}
	return uuid.New().String()
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusOK, response)
}

// Error 错误响应
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	response := &APIResponse{
		Success: false,
		Error: &APIError{
			Code:    errorCode,
			Message: message,
		},
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// ValidationError 参数验证失败响应
func (rh *ResponseHelper) ValidationError(c *gin.Context, message string) {
	rh.Error(c, http.StatusBadRequest, ErrorValidation, message)
}

// NotFound 资源不存在响应
func (rh *ResponseHelper) NotFound(c *gin.Context, message string) {
	rh.Error(c, http.StatusNotFound, ErrorNotFound, message)
}

// HandleServiceError 把服务层错误映射为HTTP响应
// 错误分类决定状态码：验证400、未找到404、限流429、其余500
func (rh *ResponseHelper) HandleServiceError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	statusCode := http.StatusInternalServerError
	errorCode := ErrorInternalError
	message := "内部错误"

	if errors.As(err, &appErr) {
		errorCode = appErr.Code
		message = appErr.Message

		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			statusCode = http.StatusBadRequest
		case apperrors.ErrorTypeNotFound:
			statusCode = http.StatusNotFound
		case apperrors.ErrorTypeRateLimited:
			statusCode = http.StatusTooManyRequests
		case apperrors.ErrorTypeSchema:
			// 生成输出不合规：对调用方是服务端故障，提示重试
			statusCode = http.StatusInternalServerError
			message = "生成结果不可用，请重试"
		}
	} else if err != nil {
		message = err.Error()
	}

	rh.Error(c, statusCode, errorCode, message)
}
