package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	"github.com/spec-kit/helper-marketplace/internal/validation"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

// HelperService serves the customer directory and the admin helper console.
type HelperService struct {
	helpers    repository.HelperRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	employeeID func() string
}

// HelperDependencies bundles collaborators for the helper service.
type HelperDependencies struct {
	HelperRepo repository.HelperRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// EmployeeID generates ids for new helpers. Defaults to a random TS-EMP id.
	EmployeeID func() string
}

// HelperInput is the admin helper form. Rating and price arrive as raw text
// and are parsed here so blank values pick up their defaults.
type HelperInput struct {
	Name            string `json:"name" validate:"notblank"`
	Phone           string `json:"phone" validate:"notblank"`
	ServiceType     string `json:"service_type" validate:"notblank"`
	Location        string `json:"location" validate:"notblank"`
	Email           string `json:"email"`
	Experience      string `json:"experience"`
	PricePerHour    string `json:"price_per_hour"`
	Rating          string `json:"rating"`
	Skills          string `json:"skills"`
	Description     string `json:"description"`
	ProfileImageURL string `json:"profile_image_url"`
}

// NewHelperService constructs the service.
func NewHelperService(deps HelperDependencies) *HelperService {
	gen := deps.EmployeeID
	if gen == nil {
		gen = validation.RandomEmployeeID
	}
	return &HelperService{
		helpers:    deps.HelperRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		employeeID: gen,
	}
}

// ListAvailableHelpers queries available helpers and groups them for the
// customer directory.
func (s *HelperService) ListAvailableHelpers(ctx context.Context) (Directory, error) {
	available := true
	items, err := s.helpers.List(ctx, repository.HelperFilter{Available: &available})
	if err != nil {
		return Directory{}, storeError(err, "helper", "")
	}
	return BuildDirectory(items), nil
}

// ListHelpers returns every helper, available ones first, then by name.
func (s *HelperService) ListHelpers(ctx context.Context) ([]domain.Helper, error) {
	items, err := s.helpers.List(ctx, repository.HelperFilter{
		OrderBy: []repository.Order{
			{Field: repository.FieldIsAvailable, Desc: true},
			{Field: repository.FieldName},
		},
	})
	if err != nil {
		return nil, storeError(err, "helper", "")
	}
	return items, nil
}

// GetHelper loads one helper.
func (s *HelperService) GetHelper(ctx context.Context, id string) (*domain.Helper, error) {
	h, err := s.helpers.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "helper", id)
	}
	return h, nil
}

// CreateHelper registers a helper. New helpers wait for approval, so they
// start unavailable with no completed jobs.
func (s *HelperService) CreateHelper(ctx context.Context, actor *domain.User, input HelperInput) (*domain.Helper, error) {
	helper := &domain.Helper{}
	if err := applyHelperInput(helper, input); err != nil {
		return nil, err
	}
	id := s.employeeID()
	helper.EmployeeID = &id
	helper.IsAvailable = false
	helper.CompletedJobs = 0

	if err := s.helpers.Create(ctx, helper); err != nil {
		return nil, storeError(err, "helper", "")
	}
	s.logger.Info("helper created", zap.String("helper_id", helper.ID), zap.String("employee_id", id))
	s.changed(ctx, actor, helper.ID, events.ActionCreated, "")
	return helper, nil
}

// UpdateHelper rewrites the editable fields. Availability, completed jobs
// and the employee id are left as stored.
func (s *HelperService) UpdateHelper(ctx context.Context, actor *domain.User, id string, input HelperInput) (*domain.Helper, error) {
	helper, err := s.helpers.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "helper", id)
	}
	if err := applyHelperInput(helper, input); err != nil {
		return nil, err
	}
	if err := s.helpers.Update(ctx, helper); err != nil {
		return nil, storeError(err, "helper", id)
	}
	s.changed(ctx, actor, id, events.ActionUpdated, "")
	return helper, nil
}

// SetAvailability approves or withdraws a helper from the directory.
func (s *HelperService) SetAvailability(ctx context.Context, actor *domain.User, id string, available bool) (*domain.Helper, error) {
	helper, err := s.helpers.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "helper", id)
	}
	helper.IsAvailable = available
	if err := s.helpers.Update(ctx, helper); err != nil {
		return nil, storeError(err, "helper", id)
	}
	s.changed(ctx, actor, id, events.ActionUpdated, "is_available")
	return helper, nil
}

// DeleteHelper removes a helper. Existing bookings keep their snapshot.
func (s *HelperService) DeleteHelper(ctx context.Context, actor *domain.User, id string) error {
	if err := s.helpers.Delete(ctx, id); err != nil {
		return storeError(err, "helper", id)
	}
	s.changed(ctx, actor, id, events.ActionDeleted, "")
	return nil
}

func (s *HelperService) changed(ctx context.Context, actor *domain.User, id string, action events.Action, field string) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventHelperChanged, id, actor,
		events.ChangedPayload{Action: action, Field: field}))
}

func applyHelperInput(h *domain.Helper, input HelperInput) error {
	if err := validation.Check(input); err != nil {
		return err
	}
	phone, err := validation.NormalizePhone(input.Phone)
	if err != nil {
		return err
	}
	serviceType, err := validation.CanonicalServiceType(input.ServiceType)
	if err != nil {
		return err
	}
	rating, err := validation.ParseRating(input.Rating)
	if err != nil {
		return err
	}
	price, err := validation.ParsePrice(input.PricePerHour)
	if err != nil {
		return err
	}
	email := validation.OptionalString(input.Email)
	if email != nil {
		if !validation.ValidEmail(*email) {
			return apperrors.NewValidationError("email", "please enter a valid email address")
		}
		normalized := validation.NormalizeEmail(*email)
		email = &normalized
	}
	experience := strings.TrimSpace(input.Experience)
	if experience == "" {
		experience = validation.DefaultExperience
	}

	h.Name = strings.TrimSpace(input.Name)
	h.Phone = phone
	h.Email = email
	h.ServiceType = serviceType
	h.Location = strings.TrimSpace(input.Location)
	h.Experience = experience
	h.PricePerHour = price
	h.Rating = rating
	h.Skills = validation.ParseSkills(input.Skills)
	h.Description = validation.OptionalString(input.Description)
	h.ProfileImageURL = validation.OptionalString(input.ProfileImageURL)
	return nil
}
