package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/pkg/response"
)

type contributorService interface {
	List(ctx context.Context, filter models.ContributorFilter) ([]models.ContributorSummary, *models.Pagination, error)
	Detail(ctx context.Context, github string) (*models.ContributorDetail, error)
}

// ContributorHandler lists contributors and their profiles.
type ContributorHandler struct {
	service contributorService
}

// NewContributorHandler constructs the handler.
func NewContributorHandler(service contributorService) *ContributorHandler {
	return &ContributorHandler{service: service}
}

// List godoc
// @Summary List contributors
// @Tags Contributors
// @Produce json
// @Param q query string false "Search by name or GitHub handle"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /contributors [get]
func (h *ContributorHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		response.Error(c, err)
		return
	}
	size, err := queryInt(c, "pageSize", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), models.ContributorFilter{
		Search:   strings.TrimSpace(c.Query("q")),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Detail godoc
// @Summary Contributor profile
// @Tags Contributors
// @Produce json
// @Param github path string true "GitHub handle"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /contributors/{github} [get]
func (h *ContributorHandler) Detail(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), c.Param("github"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
