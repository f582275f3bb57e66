package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/internal/service"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
	"github.com/noah-isme/contrib-dashboard/pkg/response"
)

type leaderboardService interface {
	Leaderboard(ctx context.Context, r daterange.DateRange, limit int) (*models.Leaderboard, error)
	Export(ctx context.Context, r daterange.DateRange, format string) (*service.ExportFile, error)
}

// LeaderboardHandler exposes contributor rankings over a date range.
type LeaderboardHandler struct {
	service leaderboardService
	now     func() time.Time
	loc     *time.Location
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(service leaderboardService, now func() time.Time, loc *time.Location) *LeaderboardHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &LeaderboardHandler{service: service, now: now, loc: loc}
}

func (h *LeaderboardHandler) window(c *gin.Context) (daterange.DateRange, error) {
	value, err := queryRange(c, h.loc)
	if err != nil {
		return daterange.DateRange{}, err
	}
	now := h.now().In(h.loc)
	return resolveRange(value, now, daterange.LastDays(now, 7)), nil
}

// Leaderboard godoc
// @Summary Contributor leaderboard
// @Description Ranks contributors by points earned between start and end. Defaults to the last 7 days.
// @Tags Leaderboard
// @Produce json
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param limit query int false "Maximum entries, 0 for all"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leaderboard [get]
func (h *LeaderboardHandler) Leaderboard(c *gin.Context) {
	r, err := h.window(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	board, err := h.service.Leaderboard(c.Request.Context(), r, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

// Export godoc
// @Summary Export the leaderboard
// @Tags Leaderboard
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /leaderboard/export [get]
func (h *LeaderboardHandler) Export(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", service.FormatCSV)))
	if format != service.FormatCSV && format != service.FormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	r, err := h.window(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Export(c.Request.Context(), r, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
