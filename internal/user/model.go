package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrNameRequired       = apperror.New(http.StatusBadRequest, "name is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrInvalidPage        = apperror.New(http.StatusBadRequest, "from must be >= 0 and size must be > 0")
)

// User represents a user in the system.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// UpdateRequest holds the profile fields a user may change. Nil means unchanged.
type UpdateRequest struct {
	Name  *string
	Email *string
}

// Filter narrows a user listing. Email and Name match substrings, ignoring case.
type Filter struct {
	Email  string
	Name   string
	Offset int
	Limit  int
}
