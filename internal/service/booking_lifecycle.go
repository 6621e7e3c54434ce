package service

import (
	"time"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

var allowedTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingStatusPending:   {domain.BookingStatusActive, domain.BookingStatusCancelled},
	domain.BookingStatusActive:    {domain.BookingStatusOngoing, domain.BookingStatusCancelled},
	domain.BookingStatusOngoing:   {domain.BookingStatusCompleted, domain.BookingStatusCancelled},
	domain.BookingStatusCompleted: {},
	domain.BookingStatusCancelled: {},
}

func isValidTransition(current, next domain.BookingStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses a booking may move to from current.
func NextStatuses(current domain.BookingStatus) []domain.BookingStatus {
	return append([]domain.BookingStatus(nil), allowedTransitions[current]...)
}

// AdvanceBooking returns b moved to next. CompletedAt is stamped with now on
// the move to completed and on no other transition.
func AdvanceBooking(b domain.Booking, next domain.BookingStatus, now time.Time) (domain.Booking, error) {
	if !isValidTransition(b.Status, next) {
		return b, apperrors.NewInvalidTransition(string(b.Status), string(next))
	}
	b.Status = next
	if next == domain.BookingStatusCompleted {
		stamp := now
		b.CompletedAt = &stamp
	}
	return b, nil
}

// PaymentStatusFor derives the initial payment status. A UPI booking carries
// a transaction id and is therefore already paid.
func PaymentStatusFor(mode domain.PaymentMode) domain.PaymentStatus {
	if mode == domain.PaymentModeUPI {
		return domain.PaymentStatusPaid
	}
	return domain.PaymentStatusPending
}
