package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ynshm/llm-traffic-optimizer/internal/middleware"
	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/analytics"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/auth"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/content/category"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/content/page"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/content/post"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/manifest"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/openai"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/settings"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/summary"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/tracking"
	pkgredis "github.com/ynshm/llm-traffic-optimizer/internal/pkg/redis"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/response"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	// Optional auth resolves tokens for everything below; rate limiting and
	// idempotence run on every route (requires Redis).
	r.Use(middleware.OptionalAuth(db))
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	// Publishing a post triggers the per-post summary and a manifest
	// refresh; both run off the request path.
	a.postSvc.OnPublish(func(p *models.PostModel) {
		if err := a.sumSvc.SummarizePost(context.Background(), p.ID); err != nil {
			a.logger.Warn("post summary on publish failed",
				zap.String("post_id", p.ID), zap.Error(err))
		}
	})
	a.postSvc.OnPublish(func(p *models.PostModel) {
		_ = a.maniSvc.Regenerate()
	})

	manifestHandler := manifest.NewHandler(a.maniSvc)
	manifestHandler.RegisterRootRoutes(r)

	api := r.Group(apiPrefix)
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "pong"})
	})

	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api)
	settings.NewHandler(a.cfgSvc).RegisterRoutes(api, authMW)
	category.NewHandler(category.NewService(db)).RegisterRoutes(api, authMW)
	page.NewHandler(page.NewService(db)).RegisterRoutes(api, authMW)
	post.NewHandler(a.postSvc, a.tracker).RegisterRoutes(api, authMW)
	tracking.NewHandler(a.tracker).RegisterRoutes(api)
	analytics.NewHandler(a.statsSvc).RegisterRoutes(api, authMW)
	openai.NewHandler(a.aiClient, a.cfgSvc).RegisterRoutes(api, authMW)
	summary.NewHandler(a.sumSvc).RegisterRoutes(api, authMW)
	manifestHandler.RegisterRoutes(api, authMW)

	a.registerCronRoutes(api, authMW)
}

// registerCronRoutes exposes the scheduler for inspection and manual runs.
func (a *App) registerCronRoutes(api *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := api.Group("/cron", authMW)
	g.GET("", func(c *gin.Context) {
		response.OK(c, gin.H{"jobs": a.sched.List()})
	})
	g.POST("/:name/trigger", func(c *gin.Context) {
		if err := a.sched.Trigger(c.Request.Context(), c.Param("name")); err != nil {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.OK(c, gin.H{"triggered": c.Param("name")})
	})
}
