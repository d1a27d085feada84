package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/service"
)

// DashboardHandler serves the home screen summary.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetDashboard godoc
// GET /api/v1/dashboard
// Retrieves counts, classes, today's lessons and recent evaluations.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.GetDashboardData())
}
