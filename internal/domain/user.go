package domain

import "time"

// UserRole separates customers from admin console operators.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// AuthProvider records how an account was created.
type AuthProvider string

const (
	ProviderEmail    AuthProvider = "email"
	ProviderGoogle   AuthProvider = "google"
	ProviderFacebook AuthProvider = "facebook"
)

// UserStatus is whether an account may sign in.
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User is a customer or admin account.
type User struct {
	ID              string
	FullName        string
	Username        string
	Email           string
	Phone           string
	PasswordHash    string
	Provider        AuthProvider
	Role            UserRole
	Status          UserStatus
	ProfileComplete bool
	PhotoURL        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin reports whether the user may use the admin console.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsBlocked reports whether an admin has blocked the account.
func (u *User) IsBlocked() bool {
	return u != nil && u.Status == UserStatusBlocked
}
