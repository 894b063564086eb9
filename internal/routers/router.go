package routers

import (
	"github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/internal/middleware"
	"github.com/dontknow492/Notes/internal/routers/api_router"

	ut "github.com/go-playground/universal-translator"
	"github.com/gin-gonic/gin"
)

// NewRouter 创建公开 API 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {
	cfg := appContainer.Config()

	r := gin.New()

	api := r.Group("/api")
	api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
	api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header))
	api.Use(middleware.AccessLogWithLogger(appContainer.Logger(), appContainer.Metrics))
	api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimiter(middleware.NewRouteLimiter(
			cfg.GetRateLimitInterval(), cfg.RateLimit.Capacity, cfg.RateLimit.Quantum)))
	}
	api.Use(middleware.LangWithTranslator(uni))

	noteHandler := api_router.NewNoteHandler(appContainer)
	tagHandler := api_router.NewTagHandler(appContainer)
	versionHandler := api_router.NewVersionHandler(appContainer)
	healthHandler := api_router.NewHealthHandler(appContainer)

	// SSE 长连接不设置请求超时
	api.GET("/notes/:id/watch", noteHandler.Watch)

	timed := api.Group("")
	timed.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
	{
		timed.GET("/version", versionHandler.ServerVersion)
		timed.GET("/health", healthHandler.Check)

		timed.GET("/notes", noteHandler.List)
		timed.POST("/notes", noteHandler.Create)
		timed.GET("/notes/:id", noteHandler.Get)
		timed.PUT("/notes/:id", noteHandler.Update)
		timed.PATCH("/notes/:id", noteHandler.Patch)
		timed.DELETE("/notes/:id", noteHandler.Delete)

		timed.GET("/tags", tagHandler.List)
		timed.GET("/tags/orphans", tagHandler.Orphans)
		timed.GET("/tag", tagHandler.Lookup)
		timed.GET("/tags/:id", tagHandler.Get)
		timed.PUT("/tags/:id", tagHandler.Rename)
		timed.DELETE("/tags/:id", tagHandler.Delete)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
