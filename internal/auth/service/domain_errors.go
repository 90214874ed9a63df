package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
)

var (
	ErrInvalidInput = commonerrors.NewDomainError(
		"INVALID_INPUT",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"invalid input",
	)

	ErrAccountExists = commonerrors.NewDomainError(
		"ACCOUNT_EXISTS",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"username already exists",
	)

	// ErrAccountNotFound only ever reaches callers as the cause of
	// ErrInvalidCredentials, so both present identically.
	ErrAccountNotFound = commonerrors.NewDomainError(
		"ACCOUNT_NOT_FOUND",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid username or password",
	)

	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid username or password",
	)

	ErrStorageUnavailable = commonerrors.NewDomainError(
		"STORAGE_UNAVAILABLE",
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"service temporarily unavailable",
	)
)

func newInternalError(cause error) commonerrors.DomainError {
	return commonerrors.ErrInternalError.WithCause(cause)
}
