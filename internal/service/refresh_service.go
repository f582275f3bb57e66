package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
	"github.com/noah-isme/contrib-dashboard/pkg/jobs"
)

// JobActivities ingests scored activity from the organisation event feed.
const JobActivities = "activities"

type sectionRefresher interface {
	Refresh(ctx context.Context, section string) error
	Events(ctx context.Context, window *daterange.DateRange, limit int) ([]models.GitHubEvent, bool, error)
}

type activityWriter interface {
	UpsertContributor(ctx context.Context, contributor *models.Contributor) error
	InsertActivities(ctx context.Context, activities []models.Activity) (int, error)
}

// RefreshServiceConfig controls the background refresh cycle.
type RefreshServiceConfig struct {
	Interval   time.Duration
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// RefreshService keeps cached upstream sections warm and ingests contributor activity.
// Work runs on a job queue fed by a periodic schedule and by admin triggers.
type RefreshService struct {
	feed      sectionRefresher
	store     activityWriter
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       RefreshServiceConfig
	queue     *jobs.Queue
	scheduler gocron.Scheduler
	mu        sync.Mutex
}

// RefreshServiceParams groups constructor dependencies.
type RefreshServiceParams struct {
	Feed    sectionRefresher
	Store   activityWriter
	Cache   *CacheService
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  RefreshServiceConfig
}

// NewRefreshService constructs a RefreshService. Call Start to begin processing.
func NewRefreshService(params RefreshServiceParams) *RefreshService {
	cfg := params.Config
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RefreshService{
		feed:    params.Feed,
		store:   params.Store,
		cache:   params.Cache,
		metrics: params.Metrics,
		logger:  logger,
		cfg:     cfg,
	}
	s.queue = jobs.NewQueue("refresh", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnResult: func(job jobs.Job, err error, _ time.Duration) {
			s.metrics.RecordRefreshJob(job.Type, err)
		},
	})
	return s
}

// JobTypes lists every job the service knows how to run.
func JobTypes() []string {
	return append(append([]string{}, Sections...), JobActivities)
}

// Start runs the worker queue and, when schedule is set, the periodic refresh.
func (s *RefreshService) Start(ctx context.Context, schedule bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Start(ctx)
	if !schedule || s.scheduler != nil {
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create refresh scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() {
			if _, err := s.Trigger(nil); err != nil {
				s.logger.Warn("scheduled refresh skipped", zap.Error(err))
			}
		}),
		gocron.WithName("refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("register refresh job: %w", err)
	}
	scheduler.Start()
	s.scheduler = scheduler
	s.logger.Info("refresh scheduled", zap.Duration("interval", s.cfg.Interval))
	return nil
}

// Stop halts the schedule and waits for workers to exit.
func (s *RefreshService) Stop() {
	s.mu.Lock()
	scheduler := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			s.logger.Warn("refresh scheduler shutdown", zap.Error(err))
		}
	}
	s.queue.Stop()
}

// Trigger enqueues refresh jobs for kinds, or for every job type when kinds is empty.
func (s *RefreshService) Trigger(kinds []string) ([]jobs.Job, error) {
	if len(kinds) == 0 {
		kinds = JobTypes()
	}
	for _, kind := range kinds {
		if !knownJob(kind) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown refresh section %q", kind))
		}
	}

	queued := make([]jobs.Job, 0, len(kinds))
	for _, kind := range kinds {
		job, err := s.queue.TryEnqueue(jobs.Job{Type: kind})
		if err != nil {
			if errors.Is(err, jobs.ErrQueueFull) || errors.Is(err, jobs.ErrNotStarted) {
				return queued, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "refresh queue unavailable")
			}
			return queued, err
		}
		queued = append(queued, job)
	}
	s.logger.Info("refresh enqueued", zap.Strings("jobs", kinds))
	return queued, nil
}

func (s *RefreshService) handle(ctx context.Context, job jobs.Job) error {
	var err error
	if job.Type == JobActivities {
		err = s.ingest(ctx)
	} else {
		err = s.feed.Refresh(ctx, job.Type)
	}
	if err != nil {
		return err
	}
	_, err = s.cache.Invalidate(ctx, CacheKey("home"))
	return err
}

// ingest scores the cached organisation events and stores new activity.
func (s *RefreshService) ingest(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	events, _, err := s.feed.Events(ctx, nil, 0)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	activities := make([]models.Activity, 0, len(events))
	for _, event := range events {
		activity, ok := ActivityFromEvent(event)
		if !ok {
			continue
		}
		if !seen[activity.GitHub] {
			seen[activity.GitHub] = true
			avatar := event.Actor.AvatarURL
			contributor := &models.Contributor{GitHub: activity.GitHub, Name: activity.GitHub, JoinedAt: event.CreatedAt}
			if avatar != "" {
				contributor.AvatarURL = &avatar
			}
			if err := s.store.UpsertContributor(ctx, contributor); err != nil {
				return err
			}
		}
		activities = append(activities, activity)
	}

	inserted, err := s.store.InsertActivities(ctx, activities)
	if err != nil {
		return err
	}
	s.logger.Info("activities ingested", zap.Int("scored", len(activities)), zap.Int("inserted", inserted))
	return nil
}

func knownJob(kind string) bool {
	for _, known := range JobTypes() {
		if kind == known {
			return true
		}
	}
	return false
}
