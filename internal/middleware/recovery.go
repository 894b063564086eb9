package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/dontknow492/Notes/pkg/app"
	"github.com/dontknow492/Notes/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件
func RecoveryWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Recovered from panic",
					zap.String("router", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("query", c.Request.URL.RawQuery),
					zap.String("ip", c.ClientIP()),
					zap.String("traceId", GetTraceIDFromGin(c)),
					zap.String("panic", fmt.Sprintf("%v", err)),
					zap.String("stack", string(debug.Stack())),
				)

				app.NewResponse(c).ToResponse(code.ErrorServerInternal)
				c.Abort()
			}
		}()

		c.Next()
	}
}
