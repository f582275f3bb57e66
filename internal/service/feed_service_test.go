package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
)

type fakeGitHub struct {
	events     []models.GitHubEvent
	releases   map[string][]models.Release
	issues     []models.Issue
	err        error
	eventCalls int32
	gate       chan struct{}
	started    chan struct{}
	labels     []string
}

func (f *fakeGitHub) ListOrgEvents(ctx context.Context, _ int) ([]models.GitHubEvent, error) {
	atomic.AddInt32(&f.eventCalls, 1)
	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.events, f.err
}

func (f *fakeGitHub) ListReleases(_ context.Context, repo string, _ int) ([]models.Release, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.releases[repo], nil
}

func (f *fakeGitHub) SearchOpenIssues(_ context.Context, labels []string, _ int) ([]models.Issue, error) {
	f.labels = labels
	return f.issues, f.err
}

func at(day int, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func sampleEvents() []models.GitHubEvent {
	return []models.GitHubEvent{
		{ID: "1", Type: "PushEvent", CreatedAt: at(1, 9)},
		{ID: "2", Type: "PullRequestEvent", CreatedAt: at(10, 23)},
		{ID: "3", Type: "IssuesEvent", CreatedAt: at(5, 12)},
		{ID: "4", Type: "ReleaseEvent", CreatedAt: at(11, 0)},
	}
}

func TestFeedServiceEventsFiltersByRange(t *testing.T) {
	gh := &fakeGitHub{events: sampleEvents()}
	svc := NewFeedService(gh, NewCacheService(newMemoryCache(), nil, time.Minute, nil, true), nil, FeedServiceConfig{})

	window := daterange.DateRange{Start: at(5, 18), End: at(10, 1)}
	events, hit, err := svc.Events(context.Background(), &window, 0)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, events, 2)
	assert.Equal(t, "2", events[0].ID)
	assert.Equal(t, "3", events[1].ID)

	inverted := daterange.DateRange{Start: window.End, End: window.Start}
	events, hit, err = svc.Events(context.Background(), &inverted, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, events, 1)
	assert.Equal(t, "2", events[0].ID)
	assert.EqualValues(t, 1, atomic.LoadInt32(&gh.eventCalls))
}

func TestFeedServiceEventsWithoutRange(t *testing.T) {
	svc := NewFeedService(&fakeGitHub{events: sampleEvents()}, nil, nil, FeedServiceConfig{})

	events, _, err := svc.Events(context.Background(), nil, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"4", "2", "3"}, []string{events[0].ID, events[1].ID, events[2].ID})
}

func TestFeedServiceCollapsesConcurrentLoads(t *testing.T) {
	gh := &fakeGitHub{events: sampleEvents(), gate: make(chan struct{})}
	svc := NewFeedService(gh, nil, nil, FeedServiceConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events, _, err := svc.Events(context.Background(), nil, 0)
			assert.NoError(t, err)
			assert.Len(t, events, 4)
		}()
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&gh.eventCalls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gh.gate)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&gh.eventCalls), int32(5))
}

func TestFeedServiceSharedLoadSurvivesCancelledCaller(t *testing.T) {
	gh := &fakeGitHub{events: sampleEvents(), gate: make(chan struct{}), started: make(chan struct{})}
	svc := NewFeedService(gh, NewCacheService(newMemoryCache(), nil, time.Minute, nil, true), nil, FeedServiceConfig{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := svc.Events(firstCtx, nil, 0)
		firstErr <- err
	}()
	<-gh.started

	type result struct {
		events []models.GitHubEvent
		err    error
	}
	second := make(chan result, 1)
	go func() {
		events, _, err := svc.Events(context.Background(), nil, 0)
		second <- result{events, err}
	}()

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(gh.gate)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.events, 4)
	assert.EqualValues(t, 1, atomic.LoadInt32(&gh.eventCalls))

	_, hit, err := svc.Events(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.True(t, hit, "the shared load is cached after the first caller left")
}

func TestFeedServiceReleasesMergesRepos(t *testing.T) {
	gh := &fakeGitHub{releases: map[string][]models.Release{
		"web": {{ID: 1, TagName: "web-v1", PublishedAt: at(2, 0)}},
		"api": {{ID: 2, TagName: "api-v3", PublishedAt: at(9, 0)}, {ID: 3, TagName: "api-v2", PublishedAt: at(1, 0)}},
	}}
	svc := NewFeedService(gh, nil, nil, FeedServiceConfig{Repos: []string{"web", "api"}})

	releases, _, err := svc.Releases(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, releases, 2)
	assert.Equal(t, "api-v3", releases[0].TagName)
	assert.Equal(t, "web-v1", releases[1].TagName)
}

func TestFeedServiceProjects(t *testing.T) {
	gh := &fakeGitHub{issues: []models.Issue{{
		Title:         "Leaderboard export",
		HTMLURL:       "https://github.com/acme/web/issues/1",
		RepositoryURL: "https://api.github.com/repos/acme/web",
		Labels:        []models.Label{{Name: "P-high"}},
	}}}
	svc := NewFeedService(gh, nil, nil, FeedServiceConfig{ActiveLabels: []string{"P-critical", "P-high"}})

	projects, _, err := svc.Projects(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "web", projects[0].Repository)
	assert.Equal(t, []string{"P-high"}, projects[0].Labels)
	assert.Equal(t, []string{"P-critical", "P-high"}, gh.labels)
}

func TestFeedServiceRefreshReloads(t *testing.T) {
	gh := &fakeGitHub{events: sampleEvents()}
	cache := newMemoryCache()
	svc := NewFeedService(gh, NewCacheService(cache, nil, time.Minute, nil, true), nil, FeedServiceConfig{})

	require.NoError(t, svc.Refresh(context.Background(), SectionEvents))
	assert.True(t, cache.has(CacheKey(SectionEvents)))
	require.NoError(t, svc.Refresh(context.Background(), SectionEvents))
	assert.EqualValues(t, 2, atomic.LoadInt32(&gh.eventCalls))
}

func TestFeedServicePropagatesUpstreamErrors(t *testing.T) {
	svc := NewFeedService(&fakeGitHub{err: errors.New("rate limited")}, nil, nil, FeedServiceConfig{Repos: []string{"web"}})

	_, _, err := svc.Events(context.Background(), nil, 0)
	assert.Error(t, err)
	_, _, err = svc.Releases(context.Background(), 0)
	assert.Error(t, err)
}
