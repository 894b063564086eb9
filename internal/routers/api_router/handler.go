// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/internal/middleware"
	"github.com/dontknow492/Notes/pkg/code"
	apperrors "github.com/dontknow492/Notes/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError 记录错误日志，4xx 业务错误降为 Info
func (h *Handler) logError(ctx context.Context, method string, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("traceId", middleware.GetTraceID(ctx)),
	}
	if e := apperrors.FromError(err); e.StatusCode() < 500 {
		h.App.Logger().Info(method, fields...)
		return
	}
	h.App.Logger().Error(method, fields...)
}

// fail 记录并输出错误响应
func (h *Handler) fail(c *gin.Context, method string, err error) {
	h.logError(c.Request.Context(), method, err)
	apperrors.ErrorResponse(c, err)
}

// invalid 输出参数错误
func invalid(c *gin.Context, details ...string) {
	apperrors.ErrorResponse(c, code.ErrorInvalidParams.WithDetails(details...))
}
