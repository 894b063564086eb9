package routers

import (
	"expvar"
	"net/http"
	"net/http/pprof"

	"github.com/dontknow492/Notes/internal/metrics"
	"github.com/dontknow492/Notes/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewPrivateRouterWithLogger 创建私有路由：expvar、prometheus 指标，debug 模式下开启 pprof
func NewPrivateRouterWithLogger(runMode string, logger *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()

	if runMode == "debug" {
		r.Use(gin.Recovery())
	} else {
		r.Use(middleware.RecoveryWithLogger(logger))
	}

	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	if runMode == "debug" {
		p := r.Group("/debug/pprof")
		{
			p.GET("/", pprofHandler(pprof.Index))
			p.GET("/cmdline", pprofHandler(pprof.Cmdline))
			p.GET("/profile", pprofHandler(pprof.Profile))
			p.POST("/symbol", pprofHandler(pprof.Symbol))
			p.GET("/symbol", pprofHandler(pprof.Symbol))
			p.GET("/trace", pprofHandler(pprof.Trace))
			p.GET("/:profile", func(c *gin.Context) {
				pprof.Handler(c.Param("profile")).ServeHTTP(c.Writer, c.Request)
			})
		}
	}

	return r
}

func pprofHandler(h http.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
