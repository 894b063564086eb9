// Package errors 统一 HTTP 错误响应
package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/dontknow492/Notes/pkg/app"
	"github.com/dontknow492/Notes/pkg/code"

	"github.com/gin-gonic/gin"
)

// AppError 统一应用错误结构体
// 包含错误码、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 固定为 false
	Status bool `json:"status"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	httpStatus int
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap 支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		Message:    c.Msg(),
		Details:    c.Details(),
		Cause:      cause,
		Timestamp:  time.Now(),
		httpStatus: c.StatusCode(),
	}
}

// StatusCode 对应的 HTTP 状态码
func (e *AppError) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

// FromError converts any service error into an AppError. Errors that carry no
// *code.Code become ErrorServerInternal with the cause kept off the wire.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return NewAppError(codeErr, err)
	}
	return NewAppError(code.ErrorServerInternal, err)
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，将错误转换为 AppError 并返回 JSON 响应
func ErrorResponse(c *gin.Context, err error) {
	appErr := FromError(err)
	appErr.TraceID = c.GetString(app.TraceIDKey)
	c.Set("status_code", appErr.StatusCode())
	c.JSON(appErr.StatusCode(), appErr)
}
