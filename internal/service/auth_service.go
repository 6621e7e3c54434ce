package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helper-marketplace/internal/auth"
	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	"github.com/spec-kit/helper-marketplace/internal/validation"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

const invalidCredentials = "invalid username or password"

var errAccountBlocked = apperrors.NewForbidden("this account has been blocked")

// AuthService coordinates registration, login and password recovery.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenManager
	guard      *auth.LoginGuard
	resets     auth.ResetTokenStore
	identities map[domain.AuthProvider]auth.IdentityProvider
	dispatcher events.Dispatcher
	logger     *zap.Logger
	resetTTL   time.Duration
	now        Clock
}

// AuthDependencies encapsulates collaborators for the auth service.
// Identities holds the configured federated sign-in providers and may be
// empty.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     *auth.PasswordHasher
	Tokens     *auth.TokenManager
	Guard      *auth.LoginGuard
	Resets     auth.ResetTokenStore
	Identities map[domain.AuthProvider]auth.IdentityProvider
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	ResetTTL   time.Duration
	Clock      Clock
}

// SignupInput is the registration form.
type SignupInput struct {
	FullName        string `json:"full_name" validate:"notblank"`
	Username        string `json:"username" validate:"notblank"`
	Email           string `json:"email" validate:"notblank,emailshape"`
	Phone           string `json:"phone" validate:"notblank"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Session is an authenticated user and their bearer token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	ttl := deps.ResetTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthService{
		users:      deps.UserRepo,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		guard:      deps.Guard,
		resets:     deps.Resets,
		identities: deps.Identities,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		resetTTL:   ttl,
		now:        clockOrNow(deps.Clock),
	}
}

// Signup registers an email account with the user role.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*Session, error) {
	if err := validation.Check(input); err != nil {
		return nil, err
	}
	username, err := validation.NormalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	phone, err := validation.NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	if err := checkNewPassword(input.Password, input.ConfirmPassword); err != nil {
		return nil, err
	}
	email := validation.NormalizeEmail(input.Email)

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
	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("username", username))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserChanged, user.ID, user,
		events.ChangedPayload{Action: events.ActionCreated}))
	return s.issue(user)
}

// Login authenticates by email or username. The attempt is claimed from the
// login guard first, so a locked session is refused before any account
// lookup.
func (s *AuthService) Login(ctx context.Context, session, identifier, password string) (*Session, error) {
	attempt, remaining, err := s.guard.Reserve(ctx, session)
	if err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	if remaining > 0 {
		return nil, apperrors.NewLoginLocked(auth.RetryAfterSeconds(remaining))
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, s.loginFailed(attempt)
	}

	var user *domain.User
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, validation.NormalizeEmail(identifier))
	} else {
		user, err = s.users.GetByUsername(ctx, strings.ToLower(identifier))
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.loginFailed(attempt)
	}
	if err != nil {
		s.releaseAttempt(ctx, attempt)
		return nil, storeError(err, "user", "")
	}

	ok, err := s.hasher.Matches(user.PasswordHash, password)
	if err != nil {
		s.releaseAttempt(ctx, attempt)
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, s.loginFailed(attempt)
	}
	if user.IsBlocked() {
		s.releaseAttempt(ctx, attempt)
		return nil, errAccountBlocked
	}

	if err := s.guard.RecordSuccess(ctx, session); err != nil {
		s.logger.Warn("reset login attempts", zap.Error(err))
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) loginFailed(attempt auth.Attempt) error {
	left, locked := s.guard.Failed(attempt)
	if locked > 0 {
		s.logger.Warn("login session locked", zap.String("session", attempt.Session), zap.Duration("lockout", locked))
		return apperrors.NewLoginLocked(auth.RetryAfterSeconds(locked))
	}
	plural := "s"
	if left == 1 {
		plural = ""
	}
	return &apperrors.DomainError{
		Code:       apperrors.CodeUnauthorized,
		Message:    fmt.Sprintf("%s (%d attempt%s remaining)", invalidCredentials, left, plural),
		HTTPStatus: http.StatusUnauthorized,
		Details:    map[string]any{"attempts_left": left},
	}
}

func (s *AuthService) releaseAttempt(ctx context.Context, attempt auth.Attempt) {
	if err := s.guard.Release(ctx, attempt); err != nil {
		s.logger.Warn("release login attempt", zap.Error(err))
	}
}

// FederatedEnabled reports whether provider is configured.
func (s *AuthService) FederatedEnabled(provider string) bool {
	_, ok := s.identities[domain.AuthProvider(provider)]
	return ok
}

func (s *AuthService) identityProvider(provider string) (auth.IdentityProvider, error) {
	p, ok := s.identities[domain.AuthProvider(provider)]
	if !ok || provider == string(domain.ProviderEmail) {
		return nil, apperrors.NewNotFound("identity provider", map[string]any{"provider": provider})
	}
	return p, nil
}

// FederatedLoginURL returns the provider's consent page for state.
func (s *AuthService) FederatedLoginURL(provider, state string) (string, error) {
	p, err := s.identityProvider(provider)
	if err != nil {
		return "", err
	}
	return p.AuthCodeURL(state), nil
}

// FederatedSignIn completes the provider callback. Accounts are matched by
// email. A first sign-in creates the account with a username derived from
// the display name.
func (s *AuthService) FederatedSignIn(ctx context.Context, provider, code string) (*Session, error) {
	p, err := s.identityProvider(provider)
	if err != nil {
		return nil, err
	}
	ident, err := p.Identify(ctx, code)
	if err != nil {
		return nil, apperrors.NewUnauthorized(err.Error())
	}
	if !validation.ValidEmail(ident.Email) {
		return nil, apperrors.NewUnauthorized("identity provider returned no usable email")
	}
	email := validation.NormalizeEmail(ident.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if existing.IsBlocked() {
			return nil, errAccountBlocked
		}
		return s.issue(existing)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "user", "")
	}

	name := ident.Name
	if name == "" {
		name = "user"
	}
	username, err := s.freeUsername(ctx, validation.DeriveUsername(name))
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		FullName: name,
		Username: username,
		Email:    email,
		Provider: domain.AuthProvider(provider),
		Role:     domain.RoleUser,
		Status:   domain.UserStatusActive,
		PhotoURL: validation.OptionalString(ident.PhotoURL),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err, "user", "")
	}
	s.logger.Info("federated user created", zap.String("user_id", user.ID), zap.String("provider", string(user.Provider)))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserChanged, user.ID, user,
		events.ChangedPayload{Action: events.ActionCreated}))
	return s.issue(user)
}

// RequestPasswordReset issues a reset token for the account with email. An
// unknown address succeeds silently so accounts cannot be enumerated.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if !validation.ValidEmail(email) {
		return apperrors.NewValidationError("email", "please enter a valid email address")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Info("password reset for unknown email")
		return nil
	}
	if err != nil {
		return storeError(err, "user", "")
	}

	token, err := s.resets.Issue(ctx, user.ID, s.resetTTL)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventPasswordResetRequested, user.ID, nil,
		events.PasswordResetRequestedPayload{
			Email:     user.Email,
			Token:     token,
			ExpiresAt: s.now().Add(s.resetTTL).UTC(),
		}))
	return nil
}

// ConfirmPasswordReset consumes token and sets a new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, password, confirm string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.NewValidationError("token", "token is required")
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return err
	}
	userID, err := s.resets.Consume(ctx, token)
	if errors.Is(err, auth.ErrResetTokenInvalid) {
		return apperrors.NewValidationError("token", err.Error())
	}
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return s.setPassword(ctx, userID, password)
}

// ChangePassword verifies the current password before replacing it.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, current, password, confirm string) error {
	if user == nil {
		return apperrors.NewUnauthorized("missing principal")
	}
	stored, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return storeError(err, "user", user.ID)
	}
	ok, err := s.hasher.Matches(stored.PasswordHash, current)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !ok {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return err
	}
	return s.setPassword(ctx, user.ID, password)
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeError(err, "user", userID)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return storeError(err, "user", userID)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserChanged, userID, user,
		events.ChangedPayload{Action: events.ActionUpdated, Field: "password"}))
	return nil
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

// freeUsername returns base, or base with a numeric suffix when taken.
func (s *AuthService) freeUsername(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "user"
	}
	candidate := base
	for i := 2; i < 100; i++ {
		_, err := s.users.GetByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", storeError(err, "user", "")
		}
		suffix := fmt.Sprintf("_%d", i)
		candidate = validation.Truncate(base, validation.MaxUsernameLength-len(suffix)) + suffix
	}
	return "", apperrors.NewConflict("could not derive a free username", map[string]any{"base": base})
}

// ensureUniqueUser reports a ConflictError when username or email belongs to
// an account other than selfID.
func ensureUniqueUser(ctx context.Context, users repository.UserRepository, username, email, selfID string) error {
	if username != "" {
		u, err := users.GetByUsername(ctx, username)
		switch {
		case err == nil && u.ID != selfID:
			return apperrors.NewConflict("username already taken", map[string]any{"field": "username"})
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return storeError(err, "user", "")
		}
	}
	if email != "" {
		u, err := users.GetByEmail(ctx, email)
		switch {
		case err == nil && u.ID != selfID:
			return apperrors.NewConflict("an account with this email already exists", map[string]any{"field": "email"})
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return storeError(err, "user", "")
		}
	}
	return nil
}

func checkNewPassword(password, confirm string) error {
	if password != confirm {
		return apperrors.NewValidationError("confirm_password", "passwords do not match")
	}
	if validation.PasswordStrength(password) != validation.StrengthStrong {
		return apperrors.NewValidationError("password",
			"password needs 8+ characters with upper and lower case letters, a number and a symbol (@$!%*?&)")
	}
	return nil
}
