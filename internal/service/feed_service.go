package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
)

// Cached upstream sections. Each maps to one cache key.
const (
	SectionEvents   = "events"
	SectionReleases = "releases"
	SectionProjects = "projects"
)

// Sections lists every upstream section in refresh order.
var Sections = []string{SectionEvents, SectionReleases, SectionProjects}

type githubSource interface {
	ListOrgEvents(ctx context.Context, limit int) ([]models.GitHubEvent, error)
	ListReleases(ctx context.Context, repo string, limit int) ([]models.Release, error)
	SearchOpenIssues(ctx context.Context, labels []string, limit int) ([]models.Issue, error)
}

// FeedServiceConfig tunes upstream reads.
type FeedServiceConfig struct {
	Repos        []string
	ActiveLabels []string
	CacheTTL     time.Duration
	// FetchLimit bounds how many items each upstream call asks for.
	FetchLimit int
	// LoadTimeout bounds a shared upstream load, which outlives any single caller.
	LoadTimeout time.Duration
}

// FeedService serves GitHub activity, releases and active projects, caching each
// upstream section and collapsing concurrent loads of the same section.
type FeedService struct {
	github githubSource
	cache  *CacheService
	logger *zap.Logger
	cfg    FeedServiceConfig
	group  singleflight.Group
}

// NewFeedService constructs a FeedService.
func NewFeedService(github githubSource, cache *CacheService, logger *zap.Logger, cfg FeedServiceConfig) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 100
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 30 * time.Second
	}
	return &FeedService{github: github, cache: cache, logger: logger, cfg: cfg}
}

// Events returns organisation events newest first. A non-nil window keeps only events
// that happened on its calendar days; an inverted window is swapped first.
func (s *FeedService) Events(ctx context.Context, window *daterange.DateRange, limit int) ([]models.GitHubEvent, bool, error) {
	events, hit, err := loadSection(ctx, s, SectionEvents, func(ctx context.Context) ([]models.GitHubEvent, error) {
		return s.github.ListOrgEvents(ctx, s.cfg.FetchLimit)
	})
	if err != nil {
		return nil, false, err
	}

	var r daterange.DateRange
	if window != nil {
		r = window.Normalize()
	}
	filtered := make([]models.GitHubEvent, 0, len(events))
	for _, event := range events {
		if window != nil && !r.Contains(event.CreatedAt) {
			continue
		}
		filtered = append(filtered, event)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return truncate(filtered, limit), hit, nil
}

// Releases returns the latest releases across the configured repositories.
func (s *FeedService) Releases(ctx context.Context, limit int) ([]models.Release, bool, error) {
	releases, hit, err := loadSection(ctx, s, SectionReleases, s.fetchReleases)
	if err != nil {
		return nil, false, err
	}
	return truncate(releases, limit), hit, nil
}

// Projects returns open issues labelled with one of the active project labels.
func (s *FeedService) Projects(ctx context.Context, limit int) ([]models.Project, bool, error) {
	projects, hit, err := loadSection(ctx, s, SectionProjects, func(ctx context.Context) ([]models.Project, error) {
		issues, err := s.github.SearchOpenIssues(ctx, s.cfg.ActiveLabels, s.cfg.FetchLimit)
		if err != nil {
			return nil, err
		}
		return projectsFromIssues(issues), nil
	})
	if err != nil {
		return nil, false, err
	}
	return truncate(projects, limit), hit, nil
}

// Refresh drops and reloads one cached section.
func (s *FeedService) Refresh(ctx context.Context, section string) error {
	if _, err := s.cache.Invalidate(ctx, CacheKey(section)); err != nil {
		return err
	}
	var err error
	switch section {
	case SectionEvents:
		_, _, err = s.Events(ctx, nil, 0)
	case SectionReleases:
		_, _, err = s.Releases(ctx, 0)
	case SectionProjects:
		_, _, err = s.Projects(ctx, 0)
	}
	return err
}

// loadSection serves section from cache, or runs fetch once for all concurrent
// callers and caches the result. The returned slice is shared and must not be mutated.
func loadSection[T any](ctx context.Context, s *FeedService, section string, fetch func(context.Context) ([]T, error)) ([]T, bool, error) {
	key := CacheKey(section)
	var cached []T
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.LoadTimeout)
		defer cancel()

		items, err := fetch(loadCtx)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(loadCtx, key, items, s.cfg.CacheTTL)
		return items, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
	if res.Err != nil {
		s.logger.Warn("upstream load failed", zap.String("section", section), zap.Error(res.Err))
		return nil, false, res.Err
	}
	if res.Shared {
		s.logger.Debug("upstream load shared", zap.String("section", section))
	}
	return res.Val.([]T), false, nil
}

func (s *FeedService) fetchReleases(ctx context.Context) ([]models.Release, error) {
	var (
		mu       sync.Mutex
		releases []models.Release
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, repo := range s.cfg.Repos {
		repo := repo
		g.Go(func() error {
			items, err := s.github.ListReleases(gctx, repo, s.cfg.FetchLimit)
			if err != nil {
				return err
			}
			mu.Lock()
			releases = append(releases, items...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].PublishedAt.After(releases[j].PublishedAt)
	})
	return releases, nil
}

func projectsFromIssues(issues []models.Issue) []models.Project {
	projects := make([]models.Project, 0, len(issues))
	for _, issue := range issues {
		labels := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			labels = append(labels, label.Name)
		}
		projects = append(projects, models.Project{
			Title:      issue.Title,
			URL:        issue.HTMLURL,
			Repository: repositoryName(issue.RepositoryURL),
			Labels:     labels,
			Assignees:  issue.Assignees,
			UpdatedAt:  issue.UpdatedAt,
		})
	}
	return projects
}

func repositoryName(apiURL string) string {
	trimmed := strings.TrimRight(apiURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
