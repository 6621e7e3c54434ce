package repository

import (
	"context"
	"time"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

// Sortable field names. They double as column names and document keys.
const (
	FieldName        = "name"
	FieldFullName    = "full_name"
	FieldRating      = "rating"
	FieldServiceType = "service_type"
	FieldIsAvailable = "is_available"
	FieldCreatedAt   = "created_at"
	FieldScheduledAt = "scheduled_at"
	FieldRole        = "role"
	FieldStatus      = "status"
)

// Order sorts a list query by one field.
type Order struct {
	Field string
	Desc  bool
}

// activeIfUnset defaults a new account's status.
func activeIfUnset(s domain.UserStatus) domain.UserStatus {
	if s == "" {
		return domain.UserStatusActive
	}
	return s
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role    *domain.UserRole
	OrderBy []Order
}

// HelperFilter narrows helper listings with equality matches.
type HelperFilter struct {
	Available   *bool
	ServiceType *string
	OrderBy     []Order
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	UserID   *string
	HelperID *string
	Status   *domain.BookingStatus
	OrderBy  []Order
	Limit    int
}

// ContactFilter narrows contact message listings.
type ContactFilter struct {
	Status  *domain.ContactStatus
	OrderBy []Order
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}

// HelperRepository persists bookable helpers.
type HelperRepository interface {
	Create(ctx context.Context, helper *domain.Helper) error
	Update(ctx context.Context, helper *domain.Helper) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Helper, error)
	List(ctx context.Context, filter HelperFilter) ([]domain.Helper, error)
}

// BookingRepository persists bookings. Status changes go through
// UpdateStatus, which only applies when the stored status still equals from.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, completedAt *time.Time) error
}

// ContactRepository persists contact form submissions.
type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
	GetByID(ctx context.Context, id string) (*domain.ContactMessage, error)
	List(ctx context.Context, filter ContactFilter) ([]domain.ContactMessage, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.ContactStatus) error
	Delete(ctx context.Context, id string) error
}

// Store bundles the four collections behind one adapter.
type Store struct {
	Users    UserRepository
	Helpers  HelperRepository
	Bookings BookingRepository
	Contacts ContactRepository
}
