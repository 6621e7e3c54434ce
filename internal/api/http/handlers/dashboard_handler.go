package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helper-marketplace/internal/api/dto"
	"github.com/spec-kit/helper-marketplace/internal/service"
)

// DashboardHandler serves the admin summary cards.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboardService}
}

// Stats handles GET /admin/dashboard. ?refresh=true drops the cached
// snapshot first.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	load := h.dashboard.Stats
	if c.QueryBool("refresh") {
		load = h.dashboard.Refresh
	}
	d, err := load(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(d)})
}
