package domain

import (
	"errors"
	"time"
)

const (
	// RoleAdmin manages operator accounts and the warehouse/carrier network.
	RoleAdmin = "admin"
	// RoleOps triggers optimization runs and reads decisions.
	RoleOps = "ops"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("access forbidden")
)

// User models an authenticated operator of the decision engine.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
