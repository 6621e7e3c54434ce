package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	"github.com/spec-kit/helper-marketplace/internal/validation"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

// ContactService handles the public contact form and its admin inbox.
type ContactService struct {
	contacts   repository.ContactRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ContactDependencies bundles collaborators for the contact service.
type ContactDependencies struct {
	ContactRepo repository.ContactRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ContactInput is the public contact form.
type ContactInput struct {
	FullName string `json:"full_name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank,emailshape"`
	Message  string `json:"message" validate:"notblank"`
	Phone    string `json:"phone"`
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	return &ContactService{
		contacts:   deps.ContactRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
	}
}

// Submit stores a new, unread message.
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*domain.ContactMessage, error) {
	if err := validation.Check(input); err != nil {
		return nil, err
	}
	var phone *string
	if strings.TrimSpace(input.Phone) != "" {
		p, err := validation.NormalizePhone(input.Phone)
		if err != nil {
			return nil, err
		}
		phone = &p
	}
	msg := &domain.ContactMessage{
		FullName: strings.TrimSpace(input.FullName),
		Email:    validation.NormalizeEmail(input.Email),
		Phone:    phone,
		Message:  strings.TrimSpace(input.Message),
		Status:   domain.ContactStatusNew,
	}
	if err := s.contacts.Create(ctx, msg); err != nil {
		return nil, storeError(err, "contact message", "")
	}
	s.logger.Info("contact message received", zap.String("contact_id", msg.ID))
	s.changed(ctx, nil, msg.ID, events.ActionCreated, "")
	return msg, nil
}

// List returns messages newest first. status narrows the list when set.
func (s *ContactService) List(ctx context.Context, status *domain.ContactStatus) ([]domain.ContactMessage, error) {
	items, err := s.contacts.List(ctx, repository.ContactFilter{
		Status:  status,
		OrderBy: []repository.Order{{Field: repository.FieldCreatedAt, Desc: true}},
	})
	if err != nil {
		return nil, storeError(err, "contact message", "")
	}
	return items, nil
}

// MarkRead moves a new message to read. Any other starting status is an
// invalid transition.
func (s *ContactService) MarkRead(ctx context.Context, actor *domain.User, id string) (*domain.ContactMessage, error) {
	msg, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "contact message", id)
	}
	if msg.Status != domain.ContactStatusNew {
		return nil, apperrors.NewInvalidTransition(string(msg.Status), string(domain.ContactStatusRead))
	}
	err = s.contacts.UpdateStatus(ctx, id, domain.ContactStatusNew, domain.ContactStatusRead)
	if errors.Is(err, repository.ErrStale) {
		return nil, apperrors.NewInvalidTransition(string(domain.ContactStatusRead), string(domain.ContactStatusRead))
	}
	if err != nil {
		return nil, storeError(err, "contact message", id)
	}
	msg.Status = domain.ContactStatusRead
	s.changed(ctx, actor, id, events.ActionUpdated, "status")
	return msg, nil
}

// Delete removes a message.
func (s *ContactService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := s.contacts.Delete(ctx, id); err != nil {
		return storeError(err, "contact message", id)
	}
	s.changed(ctx, actor, id, events.ActionDeleted, "")
	return nil
}

func (s *ContactService) changed(ctx context.Context, actor *domain.User, id string, action events.Action, field string) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventContactChanged, id, actor,
		events.ChangedPayload{Action: action, Field: field}))
}
