package repository

import (
	"context"
	"sync"

	"github.com/AlibekovAA/authd/internal/user/domain"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]domain.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return ErrUsernameAlreadyExists
	}
	r.users[user.Username] = user
	return nil
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
