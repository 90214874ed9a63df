package repository

import (
	"context"
	"errors"

	"github.com/AlibekovAA/authd/internal/common/resilience"
	"github.com/AlibekovAA/authd/internal/user/domain"
)

// BreakerRepository fails fast with commonerrors.ErrCircuitOpen while the
// wrapped store keeps failing. Not-found and duplicate answers are normal
// outcomes and never trip the breaker, nor does the caller's own context
// ending mid-call.
type BreakerRepository struct {
	next    Repository
	breaker *resilience.CircuitBreaker
}

func NewBreakerRepository(next Repository, config resilience.CircuitBreakerConfig) *BreakerRepository {
	config.IsFailure = IsStoreFailure
	return &BreakerRepository{
		next:    next,
		breaker: resilience.NewCircuitBreaker(config),
	}
}

func IsStoreFailure(err error) bool {
	return !errors.Is(err, ErrUserNotFound) &&
		!errors.Is(err, ErrUsernameAlreadyExists) &&
		!errors.Is(err, context.Canceled)
}

func (r *BreakerRepository) Create(ctx context.Context, user domain.User) error {
	return r.breaker.Call(ctx, func(ctx context.Context) error {
		return r.next.Create(ctx, user)
	})
}

func (r *BreakerRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	err := r.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		user, err = r.next.FindByUsername(ctx, username)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}
