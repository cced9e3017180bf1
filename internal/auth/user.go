package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmailTaken indicates a user with that email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email and wrong password
	// alike, so login failures do not leak which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified indicates the user has not confirmed their email.
	ErrNotVerified = errors.New("email not verified")
	// ErrInvalidToken indicates an invalid or expired token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNotFound indicates no such user.
	ErrNotFound = errors.New("user not found")
)

// User owns accounts, categories and transactions. Never deleted.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
