package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helper-marketplace/internal/api/dto"
	"github.com/spec-kit/helper-marketplace/internal/service"
	"github.com/spec-kit/helper-marketplace/internal/validation"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

// HelpersHandler serves the directory and the admin helper console.
type HelpersHandler struct {
	helpers *service.HelperService
}

// NewHelpersHandler constructs handler.
func NewHelpersHandler(helperService *service.HelperService) *HelpersHandler {
	return &HelpersHandler{helpers: helperService}
}

// Directory handles GET /helpers/directory.
func (h *HelpersHandler) Directory(c *fiber.Ctx) error {
	dir, err := h.helpers.ListAvailableHelpers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDirectoryResponse(dir)})
}

// Catalogue handles GET /helpers/services.
func (h *HelpersHandler) Catalogue(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": validation.ServiceCatalogue})
}

// List handles GET /admin/helpers.
func (h *HelpersHandler) List(c *fiber.Ctx) error {
	helpers, err := h.helpers.ListHelpers(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.HelperResponse, 0, len(helpers))
	for i := range helpers {
		items = append(items, dto.NewHelperResponse(&helpers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /admin/helpers/:id.
func (h *HelpersHandler) Get(c *fiber.Ctx) error {
	helper, err := h.helpers.GetHelper(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHelperResponse(helper)})
}

// Create handles POST /admin/helpers.
func (h *HelpersHandler) Create(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.HelperRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	helper, err := h.helpers.CreateHelper(c.UserContext(), actor, req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewHelperResponse(helper)})
}

// Update handles PUT /admin/helpers/:id.
func (h *HelpersHandler) Update(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.HelperRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	helper, err := h.helpers.UpdateHelper(c.UserContext(), actor, c.Params("id"), req.Input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHelperResponse(helper)})
}

// SetAvailability handles PATCH /admin/helpers/:id/availability.
func (h *HelpersHandler) SetAvailability(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.AvailabilityRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Available == nil {
		return apperrors.NewValidationError("available", "available is required")
	}
	helper, err := h.helpers.SetAvailability(c.UserContext(), actor, c.Params("id"), *req.Available)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHelperResponse(helper)})
}

// Delete handles DELETE /admin/helpers/:id.
func (h *HelpersHandler) Delete(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.helpers.DeleteHelper(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
