package http

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
)

var (
	ErrInvalidJSON = commonerrors.NewDomainError(
		CodeInvalidJSON,
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"request body must be a JSON object",
	)

	ErrRequestTooLarge = commonerrors.NewDomainError(
		CodeRequestTooLarge,
		commonerrors.CategoryValidation,
		http.StatusRequestEntityTooLarge,
		"request body too large",
	)

	ErrMissingAuthorization = commonerrors.NewDomainError(
		CodeMissingAuthorization,
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"missing or invalid authorization",
	)
)
