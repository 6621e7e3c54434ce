package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helper-marketplace/internal/api/dto"
	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/service"
)

// ContactsHandler serves the public contact form and the admin inbox.
type ContactsHandler struct {
	contacts *service.ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contactService *service.ContactService) *ContactsHandler {
	return &ContactsHandler{contacts: contactService}
}

// Submit handles POST /contact.
func (h *ContactsHandler) Submit(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	msg, err := h.contacts.Submit(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewContactResponse(msg)})
}

// List handles GET /admin/contacts?status=.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	var status *domain.ContactStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s := domain.ContactStatus(strings.ToLower(raw))
		status = &s
	}
	msgs, err := h.contacts.List(c.UserContext(), status)
	if err != nil {
		return err
	}
	items := make([]dto.ContactResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, dto.NewContactResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead handles POST /admin/contacts/:id/read.
func (h *ContactsHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	msg, err := h.contacts.MarkRead(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(msg)})
}

// Delete handles DELETE /admin/contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.contacts.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
