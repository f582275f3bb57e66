package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contrib-dashboard/internal/dto"
	"github.com/noah-isme/contrib-dashboard/internal/middleware"
	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/internal/service"
	"github.com/noah-isme/contrib-dashboard/internal/web"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
	"github.com/noah-isme/contrib-dashboard/pkg/jobs"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tmpl, err := web.Templates()
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.WithResponseMeta(), middleware.Theme())
	return r
}

type fakeDashboard struct {
	home *dto.HomeResponse
	hit  bool
	err  error
}

func (f *fakeDashboard) Home(context.Context) (*dto.HomeResponse, bool, error) {
	return f.home, f.hit, f.err
}

type fakeLeaderboard struct {
	board    *models.Leaderboard
	file     *service.ExportFile
	err      error
	lastR    daterange.DateRange
	lastLim  int
	lastFmt  string
	exported bool
}

func (f *fakeLeaderboard) Leaderboard(_ context.Context, r daterange.DateRange, limit int) (*models.Leaderboard, error) {
	f.lastR, f.lastLim = r, limit
	if f.err != nil {
		return nil, f.err
	}
	board := f.board
	if board == nil {
		board = &models.Leaderboard{Start: r.Start, End: r.End, Label: daterange.TriggerLabel(r)}
	}
	return board, nil
}

func (f *fakeLeaderboard) Export(_ context.Context, r daterange.DateRange, format string) (*service.ExportFile, error) {
	f.lastR, f.lastFmt, f.exported = r, format, true
	return f.file, f.err
}

type fakeFeed struct {
	events     []models.GitHubEvent
	releases   []models.Release
	projects   []models.Project
	err        error
	lastWindow *daterange.DateRange
	lastLimit  int
}

func (f *fakeFeed) Events(_ context.Context, window *daterange.DateRange, limit int) ([]models.GitHubEvent, bool, error) {
	f.lastWindow, f.lastLimit = window, limit
	return f.events, true, f.err
}

func (f *fakeFeed) Releases(_ context.Context, limit int) ([]models.Release, bool, error) {
	f.lastLimit = limit
	return f.releases, false, f.err
}

func (f *fakeFeed) Projects(_ context.Context, limit int) ([]models.Project, bool, error) {
	f.lastLimit = limit
	return f.projects, false, f.err
}

type fakeContributors struct {
	items      []models.ContributorSummary
	pagination *models.Pagination
	detail     *models.ContributorDetail
	err        error
	lastFilter models.ContributorFilter
}

func (f *fakeContributors) List(_ context.Context, filter models.ContributorFilter) ([]models.ContributorSummary, *models.Pagination, error) {
	f.lastFilter = filter
	return f.items, f.pagination, f.err
}

func (f *fakeContributors) Detail(_ context.Context, github string) (*models.ContributorDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

type fakeRangeRecorder struct {
	sources []string
}

func (f *fakeRangeRecorder) RecordRangeChange(source string) {
	f.sources = append(f.sources, source)
}

type fakeRefresh struct {
	kinds []string
	err   error
}

func (f *fakeRefresh) Trigger(kinds []string) ([]jobs.Job, error) {
	f.kinds = kinds
	if f.err != nil {
		return nil, f.err
	}
	if len(kinds) == 0 {
		kinds = service.JobTypes()
	}
	out := make([]jobs.Job, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, jobs.Job{ID: "job-" + kind, Type: kind})
	}
	return out, nil
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
