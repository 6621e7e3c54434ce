package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated         EventType = "booking_created"
	EventBookingStatusChanged   EventType = "booking_status_changed"
	EventHelperChanged          EventType = "helper_changed"
	EventUserChanged            EventType = "user_changed"
	EventContactChanged         EventType = "contact_changed"
	EventPasswordResetRequested EventType = "password_reset_requested"
)

// MutationEvents are the events that change a stored collection.
var MutationEvents = []EventType{
	EventBookingCreated,
	EventBookingStatusChanged,
	EventHelperChanged,
	EventUserChanged,
	EventContactChanged,
}

// Action names the kind of change in a *_changed event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subjectID string, actor *domain.User, payload any) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if actor != nil {
		id := actor.ID
		ev.ActorID = &id
	}
	return ev
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	UserID        string               `json:"user_id"`
	HelperID      string               `json:"helper_id"`
	ServiceName   string               `json:"service_name"`
	ScheduledAt   time.Time            `json:"scheduled_at"`
	PaymentMode   domain.PaymentMode   `json:"payment_mode"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

// BookingStatusChangedPayload payload.
type BookingStatusChangedPayload struct {
	OldStatus domain.BookingStatus `json:"old_status"`
	NewStatus domain.BookingStatus `json:"new_status"`
}

// ChangedPayload is carried by helper, user and contact change events.
type ChangedPayload struct {
	Action Action `json:"action"`
	Field  string `json:"field,omitempty"`
}

// PasswordResetRequestedPayload carries what the mailer needs.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
