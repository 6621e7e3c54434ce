package dto

import (
	"time"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	FullName        string `json:"full_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest accepts an email address or a username.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// PasswordStrengthRequest carries a candidate password for the strength meter.
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AddUserRequest is the admin add-user form.
type AddUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UpdateUserRequest is the admin edit-user form.
type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is an account without its credentials.
type UserResponse struct {
	ID              string              `json:"id"`
	FullName        string              `json:"full_name"`
	Username        string              `json:"username"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone"`
	Provider        domain.AuthProvider `json:"provider"`
	Role            domain.UserRole     `json:"role"`
	Status          domain.UserStatus   `json:"status"`
	ProfileComplete bool                `json:"profile_complete"`
	PhotoURL        *string             `json:"photo_url"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// PasswordStrengthResponse feeds the signup strength meter.
type PasswordStrengthResponse struct {
	Strength     string          `json:"strength"`
	Requirements map[string]bool `json:"requirements"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		FullName:        u.FullName,
		Username:        u.Username,
		Email:           u.Email,
		Phone:           u.Phone,
		Provider:        u.Provider,
		Role:            u.Role,
		Status:          u.Status,
		ProfileComplete: u.ProfileComplete,
		PhotoURL:        u.PhotoURL,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
