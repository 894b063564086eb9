package middleware

import (
	"sync"
	"time"

	"github.com/dontknow492/Notes/pkg/app"
	"github.com/dontknow492/Notes/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// RouteLimiter keeps one token bucket per route pattern.
// RouteLimiter 按路由分配令牌桶
type RouteLimiter struct {
	fillInterval time.Duration
	capacity     int64
	quantum      int64

	mu      sync.Mutex
	buckets map[string]*ratelimit.Bucket
}

// NewRouteLimiter 创建按路由限流器
func NewRouteLimiter(fillInterval time.Duration, capacity, quantum int64) *RouteLimiter {
	if quantum <= 0 {
		quantum = capacity
	}
	return &RouteLimiter{
		fillInterval: fillInterval,
		capacity:     capacity,
		quantum:      quantum,
		buckets:      make(map[string]*ratelimit.Bucket),
	}
}

func (l *RouteLimiter) bucket(key string) *ratelimit.Bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = ratelimit.NewBucketWithQuantum(l.fillInterval, l.capacity, l.quantum)
		l.buckets[key] = b
	}
	return b
}

// RateLimiter 创建限流中间件
func RateLimiter(l *RouteLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.FullPath()
		if l.bucket(key).TakeAvailable(1) == 0 {
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
