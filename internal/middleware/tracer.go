package middleware

import (
	"context"

	"github.com/dontknow492/Notes/pkg/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const (
	// DefaultTraceIDHeader 默认的 Trace ID 请求头名称
	DefaultTraceIDHeader = "X-Trace-ID"
)

type traceIDKey struct{}

// TraceMiddlewareWithConfig 创建请求追踪中间件
// 1. 从请求头获取或生成 Trace ID，写入 gin.Context、request.Context 和响应头
// 2. 以请求头中的 span 上下文为父节点开启 opentracing span
func TraceMiddlewareWithConfig(enabled bool, header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultTraceIDHeader
	}
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		traceID := c.GetHeader(header)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(app.TraceIDKey, traceID)
		c.Header(header, traceID)

		tracer := opentracing.GlobalTracer()
		var opts []opentracing.StartSpanOption
		if parent, err := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(c.Request.Header)); err == nil {
			opts = append(opts, ext.RPCServerOption(parent))
		}
		span := tracer.StartSpan(c.Request.Method+" "+c.FullPath(), opts...)
		span.SetTag("trace_id", traceID)
		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)
		defer span.Finish()

		ctx := context.WithValue(c.Request.Context(), traceIDKey{}, traceID)
		ctx = opentracing.ContextWithSpan(ctx, span)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
		if c.Writer.Status() >= 500 {
			ext.Error.Set(span, true)
		}
	}
}

// GetTraceID 从 context.Context 获取 Trace ID
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetTraceIDFromGin 从 gin.Context 获取 Trace ID
func GetTraceIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(app.TraceIDKey)
}
