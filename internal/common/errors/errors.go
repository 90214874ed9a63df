package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryInternal     ErrorCategory = "INTERNAL"
	CategoryExternal     ErrorCategory = "EXTERNAL"
)

// DomainError is an error that knows how it should be presented at the
// boundary. Two domain errors match under errors.Is when their codes match,
// so a sentinel keeps matching after WithCause or WithMessage.
type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
	WithMessage(message string) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

func (e *domainError) Is(target error) bool {
	t, ok := target.(*domainError)
	return ok && t.code == e.code
}

func (e *domainError) WithCause(cause error) DomainError {
	clone := *e
	clone.cause = cause
	return &clone
}

func (e *domainError) WithMessage(message string) DomainError {
	clone := *e
	clone.message = message
	return &clone
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required configuration value",
	)

	ErrInvalidJWTSecret = NewDomainError(
		"INVALID_JWT_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"JWT_SECRET must be at least 32 bytes",
	)

	ErrInvalidConfig = NewDomainError(
		"INVALID_CONFIG",
		CategoryValidation,
		http.StatusInternalServerError,
		"invalid configuration",
	)

	ErrCircuitOpen = NewDomainError(
		"CIRCUIT_OPEN",
		CategoryExternal,
		http.StatusServiceUnavailable,
		"circuit breaker is open",
	)

	ErrTokenInvalid = NewDomainError(
		"TOKEN_INVALID",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is not valid",
	)

	ErrTokenExpired = NewDomainError(
		"TOKEN_EXPIRED",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"token has expired",
	)

	ErrRequestTimeout = NewDomainError(
		"REQUEST_TIMEOUT",
		CategoryExternal,
		http.StatusServiceUnavailable,
		"request timed out",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)
)
