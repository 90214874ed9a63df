package repository

import (
	"context"
	"errors"

	"github.com/AlibekovAA/authd/internal/user/domain"
)

// Repository stores accounts keyed by a unique, case-sensitive username.
// Create must enforce uniqueness atomically: of several concurrent calls
// with one username exactly one succeeds.
type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)
