package domain

import "time"

// BookingStatus enumerates lifecycle states for bookings.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusOngoing   BookingStatus = "ongoing"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further transition is possible.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// PaymentMode is the customer's chosen way to pay.
type PaymentMode string

const (
	PaymentModeCash PaymentMode = "cash"
	PaymentModeUPI  PaymentMode = "upi"
)

// PaymentStatus tracks whether the booking has been paid for.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// HelperSnapshot is the copy of helper fields taken when a booking is made.
// Later helper edits never reach it.
type HelperSnapshot struct {
	Name       string
	Rating     float64
	JobCount   int
	EmployeeID *string
	ImageURL   *string
}

// Booking is a scheduled engagement between a user and a helper.
type Booking struct {
	ID                  string
	UserID              string
	HelperID            string
	Helper              HelperSnapshot
	ServiceName         string
	ServiceID           string
	Status              BookingStatus
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       *string
	Address             string
	ScheduledAt         time.Time
	SpecialInstructions *string
	PaymentMode         PaymentMode
	PaymentStatus       PaymentStatus
	TransactionID       *string
	TotalAmount         *float64
	CompletedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
