package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/contrib-dashboard/internal/dto"
	"github.com/noah-isme/contrib-dashboard/internal/handler"
	"github.com/noah-isme/contrib-dashboard/internal/repository"
	"github.com/noah-isme/contrib-dashboard/internal/service"
	"github.com/noah-isme/contrib-dashboard/pkg/cache"
	"github.com/noah-isme/contrib-dashboard/pkg/config"
	"github.com/noah-isme/contrib-dashboard/pkg/database"
	"github.com/noah-isme/contrib-dashboard/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logr.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logr)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }
	validate := validator.New()
	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	contributorRepo := repository.NewContributorRepository(db, metrics)
	githubRepo := repository.NewGitHubRepository(&http.Client{Timeout: cfg.GitHub.Timeout}, repository.GitHubConfig{
		BaseURL: cfg.GitHub.APIURL,
		Org:     cfg.GitHub.Org,
		Token:   cfg.GitHub.Token,
		Timeout: cfg.GitHub.Timeout,
	}, metrics, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	feedSvc := service.NewFeedService(githubRepo, cacheSvc, logr, service.FeedServiceConfig{
		Repos:        cfg.GitHub.Repos,
		ActiveLabels: cfg.Dashboard.ActiveProjectLabels,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	})
	leaderboardSvc := service.NewLeaderboardService(contributorRepo, logr)
	contributorSvc := service.NewContributorService(contributorRepo, now)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Feed:         feedSvc,
		Leaderboard:  leaderboardSvc,
		Contributors: contributorSvc,
		Cache:        cacheSvc,
		Logger:       logr,
		Now:          now,
		Config: service.DashboardServiceConfig{
			CacheTTL:          cfg.Dashboard.CacheTTL,
			FeedLimit:         cfg.Dashboard.FeedLimit,
			ReleasesLimit:     cfg.Dashboard.ReleasesLimit,
			ProjectsLimit:     cfg.Dashboard.ProjectsLimit,
			ContributorsLimit: cfg.Dashboard.ContributorsLimit,
			LeaderboardLimit:  cfg.Dashboard.LeaderboardLimit,
			Org: dto.OrgSection{
				Name:             cfg.Org.Name,
				Info:             cfg.Org.Info,
				ContributorsInfo: cfg.Org.ContributorsInfo,
			},
		},
	})
	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		AdminUsername:     cfg.Admin.Username,
		AdminPasswordHash: cfg.Admin.PasswordHash,
	})
	refreshSvc := service.NewRefreshService(service.RefreshServiceParams{
		Feed:    feedSvc,
		Store:   contributorRepo,
		Cache:   cacheSvc,
		Metrics: metrics,
		Logger:  logr,
		Config: service.RefreshServiceConfig{
			Interval:   cfg.Refresh.Interval,
			Workers:    cfg.Refresh.Workers,
			Retries:    cfg.Refresh.Retries,
			RetryDelay: 5 * time.Second,
		},
	})
	if err := refreshSvc.Start(ctx, cfg.Refresh.Enabled); err != nil {
		return err
	}
	defer refreshSvc.Stop()

	router, err := newRouter(cfg, logr, routes{
		pages: handler.NewPageHandler(handler.PageParams{
			Dashboard:    dashboardSvc,
			Leaderboard:  leaderboardSvc,
			Feed:         feedSvc,
			Contributors: contributorSvc,
			Logger:       logr,
			Now:          now,
			Location:     loc,
			Config: handler.PageConfig{
				SiteName:      cfg.Org.Name,
				APIPrefix:     cfg.APIPrefix,
				FeedLimit:     100,
				PeoplePerPage: 24,
			},
		}),
		ranges:       handler.NewDateRangeHandler(metrics, validate, now, loc),
		dashboard:    handler.NewDashboardHandler(dashboardSvc),
		leaderboard:  handler.NewLeaderboardHandler(leaderboardSvc, now, loc),
		feed:         handler.NewFeedHandler(feedSvc, now, loc),
		contributors: handler.NewContributorHandler(contributorSvc),
		auth:         handler.NewAuthHandler(authSvc),
		admin:        handler.NewAdminHandler(refreshSvc, metrics, logr),
		health: handler.NewHealthHandler(metrics.Handler(), map[string]handler.Pinger{
			"postgres": contributorRepo,
			"redis":    cacheRepo,
		}),
		tokens:  authSvc,
		metrics: metrics,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
