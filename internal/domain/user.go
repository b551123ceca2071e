package domain

import (
	"strings"
	"time"
)

// User represents a registered account
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a new User instance
func NewUser(username, email, passwordHash string) *User {
	now := time.Now()
	return &User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the user
func (u *User) Validate() error {
	if u.Username == "" {
		return NewValidationError("username is required")
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return NewValidationError("a valid email is required")
	}
	if u.PasswordHash == "" {
		return NewValidationError("password is required")
	}
	return nil
}
