package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/contrib-dashboard/api/swagger"
	"github.com/noah-isme/contrib-dashboard/internal/handler"
	"github.com/noah-isme/contrib-dashboard/internal/middleware"
	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/internal/service"
	"github.com/noah-isme/contrib-dashboard/internal/web"
	"github.com/noah-isme/contrib-dashboard/pkg/config"
	"github.com/noah-isme/contrib-dashboard/pkg/logger"
	corsmiddleware "github.com/noah-isme/contrib-dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/contrib-dashboard/pkg/middleware/requestid"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

type routes struct {
	pages        *handler.PageHandler
	ranges       *handler.DateRangeHandler
	dashboard    *handler.DashboardHandler
	leaderboard  *handler.LeaderboardHandler
	feed         *handler.FeedHandler
	contributors *handler.ContributorHandler
	auth         *handler.AuthHandler
	admin        *handler.AdminHandler
	health       *handler.HealthHandler
	tokens       tokenValidator
	metrics      *service.MetricsService
}

func newRouter(cfg *config.Config, logr *zap.Logger, h routes) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(h.metrics))

	r.GET("/health", h.health.Health)
	r.GET("/ready", h.health.Ready)
	r.GET("/metrics", h.health.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	site := r.Group("/", middleware.Theme())
	site.GET("/", h.pages.Home)
	site.GET("/leaderboard", h.pages.Leaderboard)
	site.GET("/feed", h.pages.Feed)
	site.GET("/releases", h.pages.Releases)
	site.GET("/projects", h.pages.Projects)
	site.GET("/people", h.pages.People)
	site.GET("/contributors/:github", h.pages.Contributor)
	site.GET("/theme/:mode", h.pages.Theme)
	site.GET("/range/toggle", h.ranges.Toggle)
	site.GET("/range/edit", h.ranges.Edit)
	site.GET("/range/preset", h.ranges.Preset)
	site.GET("/range/dismiss", h.ranges.Dismiss)

	api := r.Group(cfg.APIPrefix, corsmiddleware.New(cfg.CORS.AllowedOrigins), middleware.WithResponseMeta())
	api.GET("/ranges/presets", h.ranges.Presets)
	api.POST("/ranges/events", h.ranges.Event)
	api.GET("/dashboard", h.dashboard.Home)
	api.GET("/leaderboard", h.leaderboard.Leaderboard)
	api.GET("/leaderboard/export", h.leaderboard.Export)
	api.GET("/feed", h.feed.Events)
	api.GET("/releases", h.feed.Releases)
	api.GET("/projects", h.feed.Projects)
	api.GET("/contributors", h.contributors.List)
	api.GET("/contributors/:github", h.contributors.Detail)
	api.POST("/auth/token", h.auth.Token)

	admin := api.Group("/admin", middleware.JWT(h.tokens))
	admin.POST("/refresh", h.admin.Refresh)
	admin.GET("/metrics", h.admin.Metrics)

	return r, nil
}
