package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/AlibekovAA/authd/internal/auth/service"
	"github.com/AlibekovAA/authd/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/authd/internal/common/crypto"
	"github.com/AlibekovAA/authd/internal/common/logger"
	userdomain "github.com/AlibekovAA/authd/internal/user/domain"
	userrepo "github.com/AlibekovAA/authd/internal/user/repository"
)

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user userdomain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	createCalls        int
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

type mockHasher struct {
	hashFunc     func(password string) (string, error)
	compareFunc  func(hash string, password string) error
	compareCalls []string
}

func (m *mockHasher) Hash(_ context.Context, password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(_ context.Context, hash string, password string) error {
	m.compareCalls = append(m.compareCalls, hash)
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash != "hashed_"+password {
		return commoncrypto.ErrPasswordMismatch
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "generated-id", nil
}

func setupCredentialService(t *testing.T) (*service.CredentialService, *mockUserRepo, *mockHasher, *mockIDGenerator, *clock.MockClock) {
	t.Helper()

	repo := &mockUserRepo{}
	hasher := &mockHasher{}
	idGen := &mockIDGenerator{}
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	svc := service.NewCredentialService(repo, hasher, idGen, mockClock, logger.NewNop())
	return svc, repo, hasher, idGen, mockClock
}
