package repository

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

type userDoc struct {
	ID              string    `bson:"_id"`
	FullName        string    `bson:"full_name"`
	Username        string    `bson:"username"`
	Email           string    `bson:"email"`
	Phone           string    `bson:"phone"`
	PasswordHash    string    `bson:"password_hash,omitempty"`
	Provider        string    `bson:"provider"`
	Role            string    `bson:"role"`
	Status          string    `bson:"status,omitempty"`
	ProfileComplete bool      `bson:"profile_complete"`
	PhotoURL        *string   `bson:"photo_url,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

type helperDoc struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	Phone           string    `bson:"phone"`
	Email           *string   `bson:"email,omitempty"`
	ServiceType     string    `bson:"service_type"`
	Location        string    `bson:"location"`
	Experience      string    `bson:"experience"`
	IsAvailable     bool      `bson:"is_available"`
	PricePerHour    *float64  `bson:"price_per_hour,omitempty"`
	Rating          float64   `bson:"rating"`
	CompletedJobs   int       `bson:"completed_jobs"`
	Skills          []string  `bson:"skills"`
	EmployeeID      *string   `bson:"employee_id,omitempty"`
	Description     *string   `bson:"description,omitempty"`
	ProfileImageURL *string   `bson:"profile_image_url,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

type bookingDoc struct {
	ID                  string     `bson:"_id"`
	UserID              string     `bson:"user_id"`
	HelperID            string     `bson:"helper_id"`
	HelperName          string     `bson:"helper_name"`
	HelperRating        float64    `bson:"helper_rating"`
	HelperJobCount      int        `bson:"helper_job_count"`
	HelperEmployeeID    *string    `bson:"helper_employee_id,omitempty"`
	HelperImageURL      *string    `bson:"helper_image_url,omitempty"`
	ServiceName         string     `bson:"service_name"`
	ServiceID           string     `bson:"service_id"`
	Status              string     `bson:"status"`
	CustomerName        string     `bson:"customer_name"`
	CustomerPhone       string     `bson:"customer_phone"`
	CustomerEmail       *string    `bson:"customer_email,omitempty"`
	Address             string     `bson:"address"`
	ScheduledAt         time.Time  `bson:"scheduled_at"`
	SpecialInstructions *string    `bson:"special_instructions,omitempty"`
	PaymentMode         string     `bson:"payment_mode"`
	PaymentStatus       string     `bson:"payment_status"`
	TransactionID       *string    `bson:"transaction_id,omitempty"`
	TotalAmount         *float64   `bson:"total_amount,omitempty"`
	CompletedAt         *time.Time `bson:"completed_at,omitempty"`
	CreatedAt           time.Time  `bson:"created_at"`
	UpdatedAt           time.Time  `bson:"updated_at"`
}

type contactDoc struct {
	ID        string    `bson:"_id"`
	FullName  string    `bson:"full_name"`
	Email     string    `bson:"email"`
	Phone     *string   `bson:"phone,omitempty"`
	Message   string    `bson:"message"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
}

var (
	userSchema    = schemaOf(userDoc{})
	helperSchema  = schemaOf(helperDoc{})
	bookingSchema = schemaOf(bookingDoc{})
	contactSchema = schemaOf(contactDoc{})
)

func newUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:              u.ID,
		FullName:        u.FullName,
		Username:        u.Username,
		Email:           u.Email,
		Phone:           u.Phone,
		PasswordHash:    u.PasswordHash,
		Provider:        string(u.Provider),
		Role:            string(u.Role),
		Status:          string(u.Status),
		ProfileComplete: u.ProfileComplete,
		PhotoURL:        u.PhotoURL,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (d userDoc) toDomain() (domain.User, error) {
	status := domain.UserStatus(d.Status)
	if status == "" {
		status = domain.UserStatusActive
	}
	if err := errors.Join(
		oneOf("role", domain.UserRole(d.Role), domain.RoleUser, domain.RoleAdmin),
		oneOf("provider", domain.AuthProvider(d.Provider), domain.ProviderEmail, domain.ProviderGoogle, domain.ProviderFacebook),
		oneOf("status", status, domain.UserStatusActive, domain.UserStatusBlocked),
	); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:              d.ID,
		FullName:        d.FullName,
		Username:        d.Username,
		Email:           d.Email,
		Phone:           d.Phone,
		PasswordHash:    d.PasswordHash,
		Provider:        domain.AuthProvider(d.Provider),
		Role:            domain.UserRole(d.Role),
		Status:          status,
		ProfileComplete: d.ProfileComplete,
		PhotoURL:        d.PhotoURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

func newHelperDoc(h *domain.Helper) helperDoc {
	return helperDoc{
		ID:              h.ID,
		Name:            h.Name,
		Phone:           h.Phone,
		Email:           h.Email,
		ServiceType:     h.ServiceType,
		Location:        h.Location,
		Experience:      h.Experience,
		IsAvailable:     h.IsAvailable,
		PricePerHour:    h.PricePerHour,
		Rating:          h.Rating,
		CompletedJobs:   h.CompletedJobs,
		Skills:          skillsOrEmpty(h.Skills),
		EmployeeID:      h.EmployeeID,
		Description:     h.Description,
		ProfileImageURL: h.ProfileImageURL,
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
}

func (d helperDoc) toDomain() (domain.Helper, error) {
	checks := []error{inRange("rating", d.Rating, 0, maxStoredRating)}
	if d.CompletedJobs < 0 {
		checks = append(checks, fmt.Errorf("%w: completed_jobs %d is negative", ErrMalformed, d.CompletedJobs))
	}
	if d.PricePerHour != nil {
		checks = append(checks, inRange("price_per_hour", *d.PricePerHour, 0, math.MaxFloat64))
	}
	if err := errors.Join(checks...); err != nil {
		return domain.Helper{}, err
	}
	return domain.Helper{
		ID:              d.ID,
		Name:            d.Name,
		Phone:           d.Phone,
		Email:           d.Email,
		ServiceType:     d.ServiceType,
		Location:        d.Location,
		Experience:      d.Experience,
		IsAvailable:     d.IsAvailable,
		PricePerHour:    d.PricePerHour,
		Rating:          d.Rating,
		CompletedJobs:   d.CompletedJobs,
		Skills:          d.Skills,
		EmployeeID:      d.EmployeeID,
		Description:     d.Description,
		ProfileImageURL: d.ProfileImageURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

func newBookingDoc(b *domain.Booking) bookingDoc {
	return bookingDoc{
		ID:                  b.ID,
		UserID:              b.UserID,
		HelperID:            b.HelperID,
		HelperName:          b.Helper.Name,
		HelperRating:        b.Helper.Rating,
		HelperJobCount:      b.Helper.JobCount,
		HelperEmployeeID:    b.Helper.EmployeeID,
		HelperImageURL:      b.Helper.ImageURL,
		ServiceName:         b.ServiceName,
		ServiceID:           b.ServiceID,
		Status:              string(b.Status),
		CustomerName:        b.CustomerName,
		CustomerPhone:       b.CustomerPhone,
		CustomerEmail:       b.CustomerEmail,
		Address:             b.Address,
		ScheduledAt:         b.ScheduledAt,
		SpecialInstructions: b.SpecialInstructions,
		PaymentMode:         string(b.PaymentMode),
		PaymentStatus:       string(b.PaymentStatus),
		TransactionID:       b.TransactionID,
		TotalAmount:         b.TotalAmount,
		CompletedAt:         b.CompletedAt,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

func (d bookingDoc) toDomain() (domain.Booking, error) {
	if err := errors.Join(
		oneOf("status", domain.BookingStatus(d.Status), domain.BookingStatusPending, domain.BookingStatusActive,
			domain.BookingStatusOngoing, domain.BookingStatusCompleted, domain.BookingStatusCancelled),
		oneOf("payment_mode", domain.PaymentMode(d.PaymentMode), domain.PaymentModeCash, domain.PaymentModeUPI),
		oneOf("payment_status", domain.PaymentStatus(d.PaymentStatus), domain.PaymentStatusPending, domain.PaymentStatusPaid),
		inRange("helper_rating", d.HelperRating, 0, maxStoredRating),
	); err != nil {
		return domain.Booking{}, err
	}
	return domain.Booking{
		ID:       d.ID,
		UserID:   d.UserID,
		HelperID: d.HelperID,
		Helper: domain.HelperSnapshot{
			Name:       d.HelperName,
			Rating:     d.HelperRating,
			JobCount:   d.HelperJobCount,
			EmployeeID: d.HelperEmployeeID,
			ImageURL:   d.HelperImageURL,
		},
		ServiceName:         d.ServiceName,
		ServiceID:           d.ServiceID,
		Status:              domain.BookingStatus(d.Status),
		CustomerName:        d.CustomerName,
		CustomerPhone:       d.CustomerPhone,
		CustomerEmail:       d.CustomerEmail,
		Address:             d.Address,
		ScheduledAt:         d.ScheduledAt,
		SpecialInstructions: d.SpecialInstructions,
		PaymentMode:         domain.PaymentMode(d.PaymentMode),
		PaymentStatus:       domain.PaymentStatus(d.PaymentStatus),
		TransactionID:       d.TransactionID,
		TotalAmount:         d.TotalAmount,
		CompletedAt:         d.CompletedAt,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}, nil
}

func newContactDoc(m *domain.ContactMessage) contactDoc {
	return contactDoc{
		ID:        m.ID,
		FullName:  m.FullName,
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func (d contactDoc) toDomain() (domain.ContactMessage, error) {
	if err := oneOf("status", domain.ContactStatus(d.Status), domain.ContactStatusNew, domain.ContactStatusRead); err != nil {
		return domain.ContactMessage{}, err
	}
	return domain.ContactMessage{
		ID:        d.ID,
		FullName:  d.FullName,
		Email:     d.Email,
		Phone:     d.Phone,
		Message:   d.Message,
		Status:    domain.ContactStatus(d.Status),
		CreatedAt: d.CreatedAt,
	}, nil
}

const maxStoredRating = 5.0

func oneOf[T ~string](field string, v T, allowed ...T) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return fmt.Errorf("%w: %s %q is not one of %v", ErrMalformed, field, v, allowed)
}

func inRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return fmt.Errorf("%w: %s %v is out of range", ErrMalformed, field, v)
	}
	return nil
}
