package service

import (
	"context"
	"strings"
	"time"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
)

const (
	summaryWindowDays = 7
	historyWindowDays = 365
	historyLimit      = 50
)

type contributorStore interface {
	List(ctx context.Context, filter models.ContributorFilter, from, to time.Time) ([]models.ContributorSummary, int, error)
	FindByGitHub(ctx context.Context, github string) (*models.Contributor, error)
	ListActivities(ctx context.Context, github string, from, to time.Time, limit int) ([]models.Activity, error)
}

// ContributorService serves contributor listings and profiles with their weekly summary.
type ContributorService struct {
	store contributorStore
	now   func() time.Time
}

// NewContributorService constructs a ContributorService. A nil clock uses time.Now.
func NewContributorService(store contributorStore, now func() time.Time) *ContributorService {
	if now == nil {
		now = time.Now
	}
	return &ContributorService{store: store, now: now}
}

// WeekWindow is the "last 7 days" window the weekly summary is computed over.
func WeekWindow(now time.Time) daterange.DateRange {
	return daterange.LastDays(now, summaryWindowDays)
}

// List returns contributors ordered by weekly points.
func (s *ContributorService) List(ctx context.Context, filter models.ContributorFilter) ([]models.ContributorSummary, *models.Pagination, error) {
	from, to := WeekWindow(s.now()).Bounds()
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.store.List(ctx, filter, from, to)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contributors")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Detail returns a contributor profile with the weekly summary and a year of activity.
func (s *ContributorService) Detail(ctx context.Context, github string) (*models.ContributorDetail, error) {
	github = strings.TrimSpace(github)
	if github == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "github handle is required")
	}

	contributor, err := s.store.FindByGitHub(ctx, github)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from, to := daterange.LastDays(now, historyWindowDays).Bounds()
	activities, err := s.store.ListActivities(ctx, contributor.GitHub, from, to, historyLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contributor activity")
	}

	return &models.ContributorDetail{
		Contributor: *contributor,
		WeekSummary: Summarize(activities, WeekWindow(now)),
		Activities:  activities,
	}, nil
}

// Summarize aggregates the activities that fall on the calendar days of window.
func Summarize(activities []models.Activity, window daterange.DateRange) models.ActivitySummary {
	var summary models.ActivitySummary
	for _, activity := range activities {
		if !window.Contains(activity.OccurredAt) {
			continue
		}
		summary.Points += activity.Points
		switch activity.Type {
		case models.ActivityPROpened:
			summary.PROpened++
		case models.ActivityPRMerged:
			summary.PRMerged++
		case models.ActivityPRReviewed:
			summary.PRReviewed++
		case models.ActivityIssueOpened:
			summary.IssuesOpened++
		case models.ActivityIssueAssigned:
			summary.IssuesAssigned++
		case models.ActivityComment:
			summary.Comments++
		case models.ActivityEODUpdate:
			summary.EODUpdates++
		}
	}
	return summary
}
