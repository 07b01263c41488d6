// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	// 通用错误类型
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeError      ErrorType = "processing_error"

	// 生成链错误：模型输出无法解析为约定的结构
	// 属于致命错误，核心内部不自动重试
	ErrorTypeSchema ErrorType = "schema_error"

	// 语音合成错误，细分为普通失败和限流
	ErrorTypeSynthesis   ErrorType = "synthesis_error"
	ErrorTypeRateLimited ErrorType = "rate_limited"
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // 用户友好的错误代码
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的 AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewValidationError 创建验证错误
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewProcessingError 创建处理错误
func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

// NewSchemaError 创建生成输出解析错误
func NewSchemaError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeSchema, message, originalError)
}

// NewSynthesisError 创建语音合成错误
func NewSynthesisError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeSynthesis, message, originalError)
}

// NewRateLimitedError 创建限流错误
func NewRateLimitedError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeRateLimited, message, originalError)
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == ErrorTypeValidation
	}
	return false
}

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == ErrorTypeNotFound
	}
	return false
}

// IsSchemaError 检查是否为生成输出解析错误
func IsSchemaError(err error) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == ErrorTypeSchema
	}
	return false
}

// IsSynthesisError 检查是否为语音合成错误（含限流）
func IsSynthesisError(err error) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == ErrorTypeSynthesis || appError.Type == ErrorTypeRateLimited
	}
	return false
}

// IsRateLimited 检查错误是否携带限流特征
// 限流会把整个音频遍历立即中止，与普通逐场景跳过区分开
func IsRateLimited(err error) bool {
	var appError *AppError
	if errors.As(err, &appError) && appError.Type == ErrorTypeRateLimited {
		return true
	}
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate") || strings.Contains(msg, "limit") ||
		strings.Contains(msg, "quota") || strings.Contains(msg, "429")
}

// generateErrorCode 根据错误类型生成错误代码
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	case ErrorTypeSchema:
		return "SCHEMA_ERROR"
	case ErrorTypeSynthesis:
		return "SYNTHESIS_ERROR"
	case ErrorTypeRateLimited:
		return "RATE_LIMITED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError 包装现有错误
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// 如果已经是 AppError，只更新消息
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	// 否则创建新的 AppError
	return NewAppError(errType, message, err)
}
