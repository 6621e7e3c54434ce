package dto

import (
	"time"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/service"
)

// CreateBookingRequest payload.
type CreateBookingRequest struct {
	HelperID            string    `json:"helper_id"`
	CustomerName        string    `json:"customer_name"`
	CustomerPhone       string    `json:"customer_phone"`
	CustomerEmail       string    `json:"customer_email"`
	Address             string    `json:"address"`
	ScheduledAt         time.Time `json:"scheduled_at"`
	SpecialInstructions string    `json:"special_instructions"`
	PaymentMode         string    `json:"payment_mode"`
	TransactionID       string    `json:"transaction_id"`
}

// Input converts the request to the service form.
func (r CreateBookingRequest) Input() service.BookingInput {
	return service.BookingInput{
		HelperID:            r.HelperID,
		CustomerName:        r.CustomerName,
		CustomerPhone:       r.CustomerPhone,
		Address:             r.Address,
		ScheduledAt:         r.ScheduledAt,
		PaymentMode:         r.PaymentMode,
		CustomerEmail:       r.CustomerEmail,
		TransactionID:       r.TransactionID,
		SpecialInstructions: r.SpecialInstructions,
	}
}

// BookingStatusRequest asks for a lifecycle transition.
type BookingStatusRequest struct {
	Status domain.BookingStatus `json:"status"`
}

// HelperSnapshotResponse is the helper as captured at booking time.
type HelperSnapshotResponse struct {
	Name          string  `json:"name"`
	Rating        float64 `json:"rating"`
	DisplayRating string  `json:"display_rating"`
	JobCount      int     `json:"job_count"`
	EmployeeID    *string `json:"employee_id"`
	ImageURL      *string `json:"image_url"`
}

// BookingResponse response.
type BookingResponse struct {
	ID                  string                 `json:"id"`
	UserID              string                 `json:"user_id"`
	HelperID            string                 `json:"helper_id"`
	Helper              HelperSnapshotResponse `json:"helper"`
	ServiceName         string                 `json:"service_name"`
	ServiceID           string                 `json:"service_id"`
	Status              domain.BookingStatus   `json:"status"`
	NextStatuses        []domain.BookingStatus `json:"next_statuses"`
	CustomerName        string                 `json:"customer_name"`
	CustomerPhone       string                 `json:"customer_phone"`
	CustomerEmail       *string                `json:"customer_email"`
	Address             string                 `json:"address"`
	ScheduledAt         time.Time              `json:"scheduled_at"`
	SpecialInstructions *string                `json:"special_instructions"`
	PaymentMode         domain.PaymentMode     `json:"payment_mode"`
	PaymentStatus       domain.PaymentStatus   `json:"payment_status"`
	TransactionID       *string                `json:"transaction_id"`
	TotalAmount         *float64               `json:"total_amount"`
	CompletedAt         *time.Time             `json:"completed_at"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// NewBookingResponse maps a domain booking.
func NewBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:       b.ID,
		UserID:   b.UserID,
		HelperID: b.HelperID,
		Helper: HelperSnapshotResponse{
			Name:          b.Helper.Name,
			Rating:        b.Helper.Rating,
			DisplayRating: service.DisplayRating(b.Helper.Rating),
			JobCount:      b.Helper.JobCount,
			EmployeeID:    b.Helper.EmployeeID,
			ImageURL:      b.Helper.ImageURL,
		},
		ServiceName:         b.ServiceName,
		ServiceID:           b.ServiceID,
		Status:              b.Status,
		NextStatuses:        service.NextStatuses(b.Status),
		CustomerName:        b.CustomerName,
		CustomerPhone:       b.CustomerPhone,
		CustomerEmail:       b.CustomerEmail,
		Address:             b.Address,
		ScheduledAt:         b.ScheduledAt,
		SpecialInstructions: b.SpecialInstructions,
		PaymentMode:         b.PaymentMode,
		PaymentStatus:       b.PaymentStatus,
		TransactionID:       b.TransactionID,
		TotalAmount:         b.TotalAmount,
		CompletedAt:         b.CompletedAt,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

// NewBookingList maps a slice of bookings.
func NewBookingList(items []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(items))
	for i := range items {
		out = append(out, NewBookingResponse(&items[i]))
	}
	return out
}
