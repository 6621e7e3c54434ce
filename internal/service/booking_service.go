package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	"github.com/spec-kit/helper-marketplace/internal/validation"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

// BookingService coordinates booking workflows.
type BookingService struct {
	bookings   repository.BookingRepository
	helpers    repository.HelperRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// BookingDependencies bundles repositories for the booking service.
type BookingDependencies struct {
	BookingRepo repository.BookingRepository
	HelperRepo  repository.HelperRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       Clock
}

// BookingInput is the customer's booking form. Field order is the order in
// which missing values are reported.
type BookingInput struct {
	HelperID            string    `json:"helper_id" validate:"notblank"`
	CustomerName        string    `json:"customer_name" validate:"notblank"`
	CustomerPhone       string    `json:"customer_phone" validate:"notblank"`
	Address             string    `json:"address" validate:"notblank"`
	ScheduledAt         time.Time `json:"scheduled_at" validate:"required"`
	PaymentMode         string    `json:"payment_mode" validate:"notblank"`
	CustomerEmail       string    `json:"customer_email"`
	TransactionID       string    `json:"transaction_id"`
	SpecialInstructions string    `json:"special_instructions"`
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	return &BookingService{
		bookings:   deps.BookingRepo,
		helpers:    deps.HelperRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		now:        clockOrNow(deps.Clock),
	}
}

// CreateBooking validates input and stores a pending booking with a snapshot
// of the helper. Nothing is written unless every check passes.
func (s *BookingService) CreateBooking(ctx context.Context, user *domain.User, input BookingInput) (*domain.Booking, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("sign in to book a helper")
	}
	if err := validation.Check(input); err != nil {
		return nil, err
	}
	phone, err := validation.NormalizePhone(input.CustomerPhone)
	if err != nil {
		return nil, apperrors.NewValidationError("customer_phone", "please enter a valid 10-digit phone number")
	}
	email := validation.OptionalString(input.CustomerEmail)
	if email != nil && !validation.ValidEmail(*email) {
		return nil, apperrors.NewValidationError("customer_email", "please enter a valid email address")
	}

	now := s.now()
	if !input.ScheduledAt.After(now) {
		return nil, apperrors.NewValidationError("scheduled_at", "please select a future date and time")
	}

	mode := domain.PaymentMode(strings.ToLower(strings.TrimSpace(input.PaymentMode)))
	if mode != domain.PaymentModeCash && mode != domain.PaymentModeUPI {
		return nil, apperrors.NewValidationError("payment_mode", "payment_mode must be one of: cash upi")
	}
	txn := validation.OptionalString(input.TransactionID)
	if mode == domain.PaymentModeUPI && txn == nil {
		return nil, apperrors.NewPaymentError("please enter the UPI transaction ID")
	}
	if mode == domain.PaymentModeCash {
		txn = nil
	}

	helperID := strings.TrimSpace(input.HelperID)
	helper, err := s.helpers.GetByID(ctx, helperID)
	if err != nil {
		return nil, storeError(err, "helper", helperID)
	}
	if !helper.IsAvailable {
		return nil, apperrors.NewValidationError("helper_id", "helper not available")
	}

	booking := &domain.Booking{
		UserID:   user.ID,
		HelperID: helper.ID,
		Helper: domain.HelperSnapshot{
			Name:       helper.Name,
			Rating:     helper.Rating,
			JobCount:   helper.CompletedJobs,
			EmployeeID: helper.EmployeeID,
			ImageURL:   helper.ProfileImageURL,
		},
		ServiceName:         validation.TitleCase(helper.ServiceType),
		ServiceID:           validation.ServiceID(helper.ServiceType),
		Status:              domain.BookingStatusPending,
		CustomerName:        strings.TrimSpace(input.CustomerName),
		CustomerPhone:       phone,
		CustomerEmail:       email,
		Address:             strings.TrimSpace(input.Address),
		ScheduledAt:         input.ScheduledAt.UTC(),
		SpecialInstructions: validation.OptionalString(input.SpecialInstructions),
		PaymentMode:         mode,
		PaymentStatus:       PaymentStatusFor(mode),
		TransactionID:       txn,
		TotalAmount:         helper.PricePerHour,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, storeError(err, "booking", "")
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("helper_id", booking.HelperID),
		zap.String("payment_mode", string(mode)))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventBookingCreated, booking.ID, user, events.BookingCreatedPayload{
		UserID:        booking.UserID,
		HelperID:      booking.HelperID,
		ServiceName:   booking.ServiceName,
		ScheduledAt:   booking.ScheduledAt,
		PaymentMode:   booking.PaymentMode,
		PaymentStatus: booking.PaymentStatus,
	}))
	return booking, nil
}

// AdvanceStatus moves a booking to next. The write only lands if the stored
// status is still the one the transition was checked against.
func (s *BookingService) AdvanceStatus(ctx context.Context, actor *domain.User, bookingID string, next domain.BookingStatus) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeError(err, "booking", bookingID)
	}
	updated, err := AdvanceBooking(*current, next, s.now().UTC())
	if err != nil {
		return nil, err
	}
	err = s.bookings.UpdateStatus(ctx, bookingID, current.Status, updated.Status, updated.CompletedAt)
	if errors.Is(err, repository.ErrStale) {
		return nil, apperrors.NewInvalidTransition(string(current.Status), string(next))
	}
	if err != nil {
		return nil, storeError(err, "booking", bookingID)
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", bookingID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventBookingStatusChanged, bookingID, actor, events.BookingStatusChangedPayload{
		OldStatus: current.Status,
		NewStatus: updated.Status,
	}))
	return &updated, nil
}

// CancelBooking moves a non-terminal booking to cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, actor *domain.User, bookingID string) (*domain.Booking, error) {
	return s.AdvanceStatus(ctx, actor, bookingID, domain.BookingStatusCancelled)
}

// ListUserBookings returns the user's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	items, err := s.bookings.List(ctx, repository.BookingFilter{
		UserID:  &userID,
		OrderBy: []repository.Order{{Field: repository.FieldCreatedAt, Desc: true}},
	})
	if err != nil {
		return nil, storeError(err, "booking", "")
	}
	return items, nil
}

// ListAllBookings returns every booking, newest first. status narrows the
// list when set.
func (s *BookingService) ListAllBookings(ctx context.Context, status *domain.BookingStatus) ([]domain.Booking, error) {
	items, err := s.bookings.List(ctx, repository.BookingFilter{
		Status:  status,
		OrderBy: []repository.Order{{Field: repository.FieldCreatedAt, Desc: true}},
	})
	if err != nil {
		return nil, storeError(err, "booking", "")
	}
	return items, nil
}

// GetBookingForUser loads a booking the caller owns. Admins may read any.
func (s *BookingService) GetBookingForUser(ctx context.Context, user *domain.User, bookingID string) (*domain.Booking, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("missing principal")
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeError(err, "booking", bookingID)
	}
	if booking.UserID != user.ID && !user.IsAdmin() {
		return nil, apperrors.NewForbidden("booking belongs to another user")
	}
	return booking, nil
}
