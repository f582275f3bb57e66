package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/contrib-dashboard/internal/dto"
	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
)

type feedProvider interface {
	Events(ctx context.Context, window *daterange.DateRange, limit int) ([]models.GitHubEvent, bool, error)
	Releases(ctx context.Context, limit int) ([]models.Release, bool, error)
	Projects(ctx context.Context, limit int) ([]models.Project, bool, error)
}

type leaderboardProvider interface {
	Leaderboard(ctx context.Context, r daterange.DateRange, limit int) (*models.Leaderboard, error)
}

type contributorLister interface {
	List(ctx context.Context, filter models.ContributorFilter) ([]models.ContributorSummary, *models.Pagination, error)
}

// DashboardServiceConfig tunes home page composition.
type DashboardServiceConfig struct {
	CacheTTL          time.Duration
	FeedLimit         int
	ReleasesLimit     int
	ProjectsLimit     int
	ContributorsLimit int
	LeaderboardLimit  int
	Org               dto.OrgSection
}

// DashboardService composes the home page from independent sections.
type DashboardService struct {
	feed         feedProvider
	leaderboard  leaderboardProvider
	contributors contributorLister
	cache        *CacheService
	logger       *zap.Logger
	now          func() time.Time
	cfg          DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Feed         feedProvider
	Leaderboard  leaderboardProvider
	Contributors contributorLister
	Cache        *CacheService
	Logger       *zap.Logger
	Now          func() time.Time
	Config       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = 10
	}
	if cfg.ReleasesLimit <= 0 {
		cfg.ReleasesLimit = 3
	}
	if cfg.ProjectsLimit <= 0 {
		cfg.ProjectsLimit = 6
	}
	if cfg.ContributorsLimit <= 0 {
		cfg.ContributorsLimit = 8
	}
	if cfg.LeaderboardLimit <= 0 {
		cfg.LeaderboardLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &DashboardService{
		feed:         params.Feed,
		leaderboard:  params.Leaderboard,
		contributors: params.Contributors,
		cache:        params.Cache,
		logger:       logger,
		now:          now,
		cfg:          cfg,
	}
}

// Home returns the home page payload and whether it was served from cache. A
// failing section is left empty and listed in Degraded.
func (s *DashboardService) Home(ctx context.Context) (*dto.HomeResponse, bool, error) {
	cacheKey := CacheKey("home")
	var cached dto.HomeResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	now := s.now()
	home := &dto.HomeResponse{
		Org:         s.cfg.Org,
		Leaderboard: dto.LeaderboardSection{Caption: "last 7 days"},
		GeneratedAt: now.UTC(),
	}

	var (
		mu       sync.Mutex
		degraded = map[string]bool{}
	)
	degrade := func(section string, err error) {
		s.logger.Warn("home section degraded", zap.String("section", section), zap.Error(err))
		mu.Lock()
		degraded[section] = true
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, _, err := s.feed.Events(gctx, nil, s.cfg.FeedLimit)
		if err != nil {
			degrade("events", err)
			return nil
		}
		home.Events = events
		return nil
	})
	g.Go(func() error {
		releases, _, err := s.feed.Releases(gctx, s.cfg.ReleasesLimit)
		if err != nil {
			degrade("releases", err)
			return nil
		}
		home.Releases = releases
		return nil
	})
	g.Go(func() error {
		projects, _, err := s.feed.Projects(gctx, s.cfg.ProjectsLimit)
		if err != nil {
			degrade("projects", err)
			return nil
		}
		home.Projects = projects
		return nil
	})
	g.Go(func() error {
		items, pagination, err := s.contributors.List(gctx, models.ContributorFilter{PageSize: s.cfg.ContributorsLimit})
		if err != nil {
			degrade("contributors", err)
			return nil
		}
		home.Contributors = items
		if pagination != nil && pagination.TotalCount > len(items) {
			home.MoreContributors = pagination.TotalCount - len(items)
		}
		return nil
	})
	g.Go(func() error {
		board, err := s.leaderboard.Leaderboard(gctx, WeekWindow(now), s.cfg.LeaderboardLimit)
		if err != nil {
			degrade("leaderboard", err)
			return nil
		}
		home.Leaderboard.Entries = board.Entries
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	for _, section := range []string{"events", "releases", "projects", "contributors", "leaderboard"} {
		if degraded[section] {
			home.Degraded = append(home.Degraded, section)
		}
	}
	if len(home.Degraded) == 0 {
		_ = s.cache.Set(ctx, cacheKey, home, s.cfg.CacheTTL)
	}
	return home, false, nil
}
