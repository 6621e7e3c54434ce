package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helper-marketplace/internal/auth"
	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	"github.com/spec-kit/helper-marketplace/internal/validation"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

// UserService is the admin console's account management.
type UserService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     *auth.PasswordHasher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// AddUserInput is the admin "add user" form.
type AddUserInput struct {
	FullName string `json:"full_name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank,emailshape"`
	Phone    string `json:"phone" validate:"notblank"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserInput is the admin "edit user" form.
type UpdateUserInput struct {
	FullName string `json:"full_name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank,emailshape"`
	Phone    string `json:"phone" validate:"notblank"`
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		hasher:     deps.Hasher,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
	}
}

// ListUsers returns admins first, then everyone by full name.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	items, err := s.users.List(ctx, repository.UserFilter{
		OrderBy: []repository.Order{{Field: repository.FieldRole}, {Field: repository.FieldFullName}},
	})
	if err != nil {
		return nil, storeError(err, "user", "")
	}
	return items, nil
}

// GetUser loads one account.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", id)
	}
	return u, nil
}

// AddUser creates an email account with a username derived from the name.
func (s *UserService) AddUser(ctx context.Context, actor *domain.User, input AddUserInput) (*domain.User, error) {
	if err := validation.Check(input); err != nil {
		return nil, err
	}
	phone, err := validation.NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	email := validation.NormalizeEmail(input.Email)
	username := validation.DeriveUsername(input.FullName)
	if err := ensureUniqueUser(ctx, s.users, username, email, ""); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		FullName:     strings.TrimSpace(input.FullName),
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Provider:     domain.ProviderEmail,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err, "user", "")
	}
	s.logger.Info("user added", zap.String("user_id", user.ID), zap.String("by", actorID(actor)))
	s.changed(ctx, actor, user.ID, events.ActionCreated, "")
	return user, nil
}

// UpdateUser rewrites name, email and phone.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id string, input UpdateUserInput) (*domain.User, error) {
	if err := validation.Check(input); err != nil {
		return nil, err
	}
	phone, err := validation.NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", id)
	}
	email := validation.NormalizeEmail(input.Email)
	if err := ensureUniqueUser(ctx, s.users, "", email, id); err != nil {
		return nil, err
	}
	user.FullName = strings.TrimSpace(input.FullName)
	user.Email = email
	user.Phone = phone
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", id)
	}
	s.changed(ctx, actor, id, events.ActionUpdated, "")
	return user, nil
}

// MakeAdmin grants the admin role.
func (s *UserService) MakeAdmin(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	return s.setRole(ctx, actor, id, domain.RoleAdmin)
}

// RemoveAdmin demotes an admin. Admins cannot demote themselves.
func (s *UserService) RemoveAdmin(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if actor != nil && actor.ID == id {
		return nil, apperrors.NewConflict("you cannot remove your own admin role", map[string]any{"id": id})
	}
	return s.setRole(ctx, actor, id, domain.RoleUser)
}

// BlockUser stops an account from signing in or using existing tokens.
// Admins cannot block themselves.
func (s *UserService) BlockUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if actor != nil && actor.ID == id {
		return nil, apperrors.NewConflict("you cannot block your own account", map[string]any{"id": id})
	}
	return s.setStatus(ctx, actor, id, domain.UserStatusBlocked)
}

// UnblockUser restores a blocked account.
func (s *UserService) UnblockUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	return s.setStatus(ctx, actor, id, domain.UserStatusActive)
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if actor != nil && actor.ID == id {
		return apperrors.NewConflict("you cannot delete your own account", map[string]any{"id": id})
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError(err, "user", id)
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("by", actorID(actor)))
	s.changed(ctx, actor, id, events.ActionDeleted, "")
	return nil
}

func (s *UserService) setRole(ctx context.Context, actor *domain.User, id string, role domain.UserRole) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", id)
	}
	if user.Role == role {
		return user, nil
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", id)
	}
	s.logger.Info("user role changed", zap.String("user_id", id), zap.String("role", string(role)), zap.String("by", actorID(actor)))
	s.changed(ctx, actor, id, events.ActionUpdated, "role")
	return user, nil
}

func (s *UserService) setStatus(ctx context.Context, actor *domain.User, id string, status domain.UserStatus) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", id)
	}
	if user.Status == status {
		return user, nil
	}
	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", id)
	}
	s.logger.Info("user status changed", zap.String("user_id", id), zap.String("status", string(status)), zap.String("by", actorID(actor)))
	s.changed(ctx, actor, id, events.ActionUpdated, "status")
	return user, nil
}

func (s *UserService) changed(ctx context.Context, actor *domain.User, id string, action events.Action, field string) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserChanged, id, actor,
		events.ChangedPayload{Action: action, Field: field}))
}

func actorID(actor *domain.User) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}
