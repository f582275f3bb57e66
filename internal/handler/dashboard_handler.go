package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contrib-dashboard/internal/dto"
	"github.com/noah-isme/contrib-dashboard/internal/middleware"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
	"github.com/noah-isme/contrib-dashboard/pkg/response"
)

type dashboardService interface {
	Home(ctx context.Context) (*dto.HomeResponse, bool, error)
}

// DashboardHandler wires the home composition to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Home godoc
// @Summary Home page composition
// @Description Org info, feed, releases, active projects, top contributors and the weekly leaderboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Home(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	home, cacheHit, err := h.service.Home(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetDegraded(c, home.Degraded)
	response.JSON(c, http.StatusOK, home, nil, middleware.ExtractMeta(c))
}
