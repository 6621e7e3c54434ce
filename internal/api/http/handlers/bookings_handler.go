package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helper-marketplace/internal/api/dto"
	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/service"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

// BookingsHandler manages customer bookings and the admin booking queue.
type BookingsHandler struct {
	bookings *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService *service.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookingService}
}

// Create handles POST /bookings.
func (h *BookingsHandler) Create(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateBookingRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	booking, err := h.bookings.CreateBooking(c.UserContext(), user, req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewBookingResponse(booking)})
}

// ListMine handles GET /bookings.
func (h *BookingsHandler) ListMine(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	items, err := h.bookings.ListUserBookings(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookingList(items)})
}

// Get handles GET /bookings/:id.
func (h *BookingsHandler) Get(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	booking, err := h.bookings.GetBookingForUser(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookingResponse(booking)})
}

// ListAll handles GET /admin/bookings?status=.
func (h *BookingsHandler) ListAll(c *fiber.Ctx) error {
	var status *domain.BookingStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s := domain.BookingStatus(strings.ToLower(raw))
		status = &s
	}
	items, err := h.bookings.ListAllBookings(c.UserContext(), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookingList(items)})
}

// Advance handles PATCH /admin/bookings/:id/status.
func (h *BookingsHandler) Advance(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.BookingStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status", "status is required")
	}
	booking, err := h.bookings.AdvanceStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookingResponse(booking)})
}

// Cancel handles POST /admin/bookings/:id/cancel.
func (h *BookingsHandler) Cancel(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	booking, err := h.bookings.CancelBooking(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookingResponse(booking)})
}
