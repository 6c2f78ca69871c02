// Package app assembles configuration, storage, middleware and the module
// handlers into a runnable HTTP application.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ynshm/llm-traffic-optimizer/internal/config"
	"github.com/ynshm/llm-traffic-optimizer/internal/database"
	"github.com/ynshm/llm-traffic-optimizer/internal/middleware"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/analytics"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/content/post"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/manifest"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/openai"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/settings"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/summary"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/tracking"
	pkgcron "github.com/ynshm/llm-traffic-optimizer/internal/pkg/cron"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/jwt"
	pkgredis "github.com/ynshm/llm-traffic-optimizer/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler

	cfgSvc   *settings.Service
	aiClient *openai.Client
	tracker  *tracking.Recorder
	statsSvc *analytics.Service
	postSvc  *post.Service
	sumSvc   *summary.Service
	maniSvc  *manifest.Service
}

// New initializes the application: config → DB → Redis → services → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if cfg.JWTSecret != "" {
		jwt.SetSecret(cfg.JWTSecret)
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		logger: logger,
		cancel: cancel,
		sched:  pkgcron.New(),
	}
	app.buildServices()
	app.registerRoutes(rc)
	app.registerCronJobs()
	go app.sched.Start(ctx)

	return app, nil
}

func (a *App) buildServices() {
	a.cfgSvc = settings.NewService(a.db)
	a.aiClient = openai.New(a.logger)
	a.tracker = tracking.NewRecorder(a.db, a.cfgSvc, a.logger)
	a.statsSvc = analytics.NewService(a.db)
	a.postSvc = post.NewService(a.db, a.cfgSvc)
	a.sumSvc = summary.NewService(a.db, a.cfgSvc, a.aiClient, a.postSvc, a.logger)
	a.maniSvc = manifest.NewService(manifest.NewBuilder(a.db, a.cfgSvc), a.cfg.StaticDir, a.logger)
}

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-idempotence"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		c.AllowOrigins = cfg.AllowedOrigins
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines.
func (a *App) Shutdown() { a.cancel() }
