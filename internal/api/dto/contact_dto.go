package dto

import (
	"time"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/service"
)

// ContactRequest is the public contact form.
type ContactRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
}

// Input converts the request to the service form.
func (r ContactRequest) Input() service.ContactInput {
	return service.ContactInput{FullName: r.FullName, Email: r.Email, Phone: r.Phone, Message: r.Message}
}

// ContactResponse response.
type ContactResponse struct {
	ID        string               `json:"id"`
	FullName  string               `json:"full_name"`
	Email     string               `json:"email"`
	Phone     *string              `json:"phone"`
	Message   string               `json:"message"`
	Status    domain.ContactStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewContactResponse maps a domain message.
func NewContactResponse(m *domain.ContactMessage) ContactResponse {
	return ContactResponse{
		ID:        m.ID,
		FullName:  m.FullName,
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}
