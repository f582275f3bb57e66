package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/contrib-dashboard/internal/dto"
	"github.com/noah-isme/contrib-dashboard/internal/middleware"
	"github.com/noah-isme/contrib-dashboard/internal/models"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
	"github.com/noah-isme/contrib-dashboard/pkg/jobs"
	"github.com/noah-isme/contrib-dashboard/pkg/response"
)

type refreshTrigger interface {
	Trigger(kinds []string) ([]jobs.Job, error)
}

type metricsSnapshotter interface {
	Snapshot() models.SystemMetrics
}

// AdminHandler exposes operator endpoints behind JWT.
type AdminHandler struct {
	refresh refreshTrigger
	metrics metricsSnapshotter
	logger  *zap.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(refresh refreshTrigger, metrics metricsSnapshotter, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{refresh: refresh, metrics: metrics, logger: logger}
}

// Refresh godoc
// @Summary Refresh cached upstream data
// @Description Enqueues refresh jobs for the given sections, or for everything when none are given
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.RefreshRequest false "Sections to refresh"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/refresh [post]
func (h *AdminHandler) Refresh(c *gin.Context) {
	if h.refresh == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "refresh is disabled"))
		return
	}
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid refresh payload"))
		return
	}

	queued, err := h.refresh.Trigger(req.Sections)
	if err != nil {
		response.Error(c, err)
		return
	}

	res := dto.RefreshResponse{Jobs: make([]dto.QueuedJob, 0, len(queued))}
	for _, job := range queued {
		res.Jobs = append(res.Jobs, dto.QueuedJob{ID: job.ID, Type: job.Type})
	}
	operator := ""
	if claims, ok := middleware.Operator(c); ok {
		operator = claims.Username
	}
	h.logger.Info("refresh requested", zap.String("operator", operator), zap.Int("jobs", len(res.Jobs)))
	response.Accepted(c, res)
}

// Metrics godoc
// @Summary Runtime metrics snapshot
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *AdminHandler) Metrics(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "metrics are disabled"))
		return
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
