package service

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AlibekovAA/authd/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/authd/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
	"github.com/AlibekovAA/authd/internal/common/logger"
	userdomain "github.com/AlibekovAA/authd/internal/user/domain"
	userrepo "github.com/AlibekovAA/authd/internal/user/repository"
)

const tracerName = "github.com/AlibekovAA/authd/internal/auth/service"

// PasswordHasher is satisfied by commoncrypto.HashPool.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash string, password string) error
}

type CredentialService struct {
	repo        userrepo.Repository
	hasher      PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
	tracer      trace.Tracer

	dummyMu   sync.Mutex
	dummyHash string
}

func NewCredentialService(
	repo userrepo.Repository,
	hasher PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	clock clock.Clock,
	log *logger.Logger,
) *CredentialService {
	return &CredentialService{
		repo:        repo,
		hasher:      hasher,
		idGenerator: idGenerator,
		clock:       clock,
		log:         log,
		tracer:      otel.Tracer(tracerName),
	}
}

// Register creates an account and returns its id. Nothing is written unless
// every step succeeds.
func (s *CredentialService) Register(ctx context.Context, username, password string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "CredentialService.Register")
	defer span.End()

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "register_attempt",
	}).Debug("register attempt")

	if err := ValidateCredentials(username, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return "", s.fail(span, recordRegistration, "invalid_input", err)
	}

	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_username_exists",
		}).Warn("register failed: already exists")
		return "", s.fail(span, recordRegistration, "exists", ErrAccountExists)
	case !errors.Is(err, userrepo.ErrUserNotFound):
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_lookup_failed",
		}).Errorf("register failed: store lookup error: %v", err)
		return "", s.fail(span, recordRegistration, "storage_error", storageError(err))
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		return "", s.fail(span, recordRegistration, "internal_error", newInternalError(err))
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return "", s.fail(span, recordRegistration, "internal_error", hashError(err))
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "register_username_exists",
			}).Warn("register failed: lost creation race")
			return "", s.fail(span, recordRegistration, "exists", ErrAccountExists)
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return "", s.fail(span, recordRegistration, "storage_error", storageError(err))
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"user_id":  id,
		"action":   "register_success",
	}).Info("register success")

	span.SetAttributes(attribute.String("user.id", id))
	recordRegistration("success")
	return id, nil
}

// Authenticate checks a username and password and returns the public view
// of the account. Unknown usernames and wrong passwords are reported
// identically and take comparable time.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (userdomain.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "CredentialService.Authenticate")
	defer span.End()

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "login_attempt",
	}).Debug("login attempt")

	if err := ValidateCredentials(username, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_validation_failed",
		}).Warnf("login validation failed: %v", err)
		return userdomain.Identity{}, s.fail(span, recordAuthentication, "invalid_input", err)
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "login_lookup_failed",
			}).Errorf("login failed: store lookup error: %v", err)
			return userdomain.Identity{}, s.fail(span, recordAuthentication, "storage_error", storageError(err))
		}

		if dummy := s.dummyPasswordHash(ctx); dummy != "" {
			_ = s.hasher.Compare(ctx, dummy, password)
		}

		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_user_not_found",
		}).Warn("login failed: user not found")
		return userdomain.Identity{}, s.fail(span, recordAuthentication, "not_found",
			ErrInvalidCredentials.WithCause(ErrAccountNotFound))
	}

	if err := s.hasher.Compare(ctx, user.PasswordHash, password); err != nil {
		if errors.Is(err, commoncrypto.ErrPasswordMismatch) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"user_id":  string(user.ID),
				"action":   "login_invalid_password",
			}).Warn("login failed: invalid password")
			return userdomain.Identity{}, s.fail(span, recordAuthentication, "invalid_password", ErrInvalidCredentials)
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"user_id":  string(user.ID),
			"action":   "login_compare_failed",
		}).Errorf("login failed: password compare error: %v", err)
		return userdomain.Identity{}, s.fail(span, recordAuthentication, "internal_error", hashError(err))
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")

	span.SetAttributes(attribute.String("user.id", string(user.ID)))
	recordAuthentication("success")
	return user.Identity(), nil
}

// dummyPasswordHash is hashed with the live hasher so that verifying it
// costs the same as verifying a real account. A failed attempt is retried
// on the next unknown-user login.
func (s *CredentialService) dummyPasswordHash(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash != "" {
		return s.dummyHash
	}
	hash, err := s.hasher.Hash(context.WithoutCancel(ctx), "authd-timing-equaliser")
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{"action": "dummy_hash_failed"}).Errorf("failed to prepare dummy hash: %v", err)
		return ""
	}
	s.dummyHash = hash
	return hash
}

func (s *CredentialService) fail(span trace.Span, record func(string), outcome string, err error) error {
	record(outcome)
	span.SetAttributes(attribute.String("auth.outcome", outcome))
	if de, ok := commonerrors.AsDomainError(err); ok {
		span.SetStatus(codes.Error, de.Code())
	} else {
		span.SetStatus(codes.Error, outcome)
	}
	return err
}

func storageError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return commonerrors.ErrRequestTimeout.WithCause(err)
	}
	return ErrStorageUnavailable.WithCause(err)
}

func hashError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return commonerrors.ErrRequestTimeout.WithCause(err)
	}
	return newInternalError(err)
}
