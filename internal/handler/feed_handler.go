package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contrib-dashboard/internal/middleware"
	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
	"github.com/noah-isme/contrib-dashboard/pkg/response"
)

type feedService interface {
	Events(ctx context.Context, window *daterange.DateRange, limit int) ([]models.GitHubEvent, bool, error)
	Releases(ctx context.Context, limit int) ([]models.Release, bool, error)
	Projects(ctx context.Context, limit int) ([]models.Project, bool, error)
}

// FeedHandler serves the upstream GitHub sections.
type FeedHandler struct {
	service feedService
	now     func() time.Time
	loc     *time.Location
}

// NewFeedHandler constructs the handler.
func NewFeedHandler(service feedService, now func() time.Time, loc *time.Location) *FeedHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &FeedHandler{service: service, now: now, loc: loc}
}

// Events godoc
// @Summary Organisation activity feed
// @Description Events between start and end, newest first. Without a range the whole cached feed is returned.
// @Tags Feed
// @Produce json
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param limit query int false "Maximum events, 0 for all"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /feed [get]
func (h *FeedHandler) Events(c *gin.Context) {
	value, err := queryRange(c, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	var window *daterange.DateRange
	if value != nil {
		r := resolveRange(value, h.now().In(h.loc), daterange.DateRange{})
		window = &r
	}
	events, cacheHit, err := h.service.Events(c.Request.Context(), window, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, events, nil, middleware.ExtractMeta(c))
}

// Releases godoc
// @Summary Recent releases
// @Tags Feed
// @Produce json
// @Param limit query int false "Maximum releases, 0 for all"
// @Success 200 {object} response.Envelope
// @Router /releases [get]
func (h *FeedHandler) Releases(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	releases, cacheHit, err := h.service.Releases(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, releases, nil, middleware.ExtractMeta(c))
}

// Projects godoc
// @Summary Active projects
// @Description Open issues carrying one of the active project labels
// @Tags Feed
// @Produce json
// @Param limit query int false "Maximum projects, 0 for all"
// @Success 200 {object} response.Envelope
// @Router /projects [get]
func (h *FeedHandler) Projects(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	projects, cacheHit, err := h.service.Projects(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, projects, nil, middleware.ExtractMeta(c))
}
