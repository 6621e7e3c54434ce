package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helper-marketplace/internal/api/dto"
	"github.com/spec-kit/helper-marketplace/internal/auth"
	"github.com/spec-kit/helper-marketplace/internal/service"
	"github.com/spec-kit/helper-marketplace/internal/validation"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

const (
	oauthStateCookie = "ts_oauth_state"
	oauthStateMaxAge = 10 * time.Minute
)

// AuthHandler exposes signup, login and password recovery.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: authService, cookieSecure: cookieSecure}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		FullName:        req.FullName,
		Username:        req.Username,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(session)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Login(c.UserContext(), auth.SessionID(c), req.Identifier, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// PasswordStrength handles POST /auth/password/strength.
func (h *AuthHandler) PasswordStrength(c *fiber.Ctx) error {
	var body dto.PasswordStrengthRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	pw := body.Password
	req := validation.CheckPassword(pw)
	return c.JSON(fiber.Map{"data": dto.PasswordStrengthResponse{
		Strength: string(validation.PasswordStrength(pw)),
		Requirements: map[string]bool{
			"length":    req.Length,
			"uppercase": req.Uppercase,
			"lowercase": req.Lowercase,
			"number":    req.Number,
			"special":   req.Special,
		},
	}})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "sent"}})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_updated"}})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), user, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_updated"}})
}

// FederatedStart handles GET /auth/:provider/start.
func (h *AuthHandler) FederatedStart(c *fiber.Ctx) error {
	provider := c.Params("provider")
	state := auth.NewState()
	url, err := h.auth.FederatedLoginURL(provider, state)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/" + provider,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   int(oauthStateMaxAge.Seconds()),
	})
	return c.Redirect(url, http.StatusFound)
}

// FederatedCallback handles GET /auth/:provider/callback.
func (h *AuthHandler) FederatedCallback(c *fiber.Ctx) error {
	provider := c.Params("provider")
	if !h.auth.FederatedEnabled(provider) {
		return apperrors.NewNotFound("identity provider", map[string]any{"provider": provider})
	}
	expected := c.Cookies(oauthStateCookie)
	c.ClearCookie(oauthStateCookie)
	if expected == "" || c.Query("state") != expected {
		return apperrors.NewUnauthorized("oauth state mismatch")
	}
	if msg := c.Query("error"); msg != "" {
		return apperrors.NewUnauthorized(msg)
	}
	code := c.Query("code")
	if code == "" {
		return apperrors.NewValidationError("code", "code is required")
	}
	session, err := h.auth.FederatedSignIn(c.UserContext(), provider, code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

func sessionResponse(s *service.Session) fiber.Map {
	return fiber.Map{
		"user": dto.NewUserResponse(s.User),
		"auth": dto.AuthResponse{Token: s.Token, ExpiresAt: s.ExpiresAt},
	}
}
