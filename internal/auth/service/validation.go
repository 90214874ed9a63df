package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/authd/internal/common/constants"
)

var validate = validator.New()

var (
	usernameRule = fmt.Sprintf("min=%d,max=%d", constants.UsernameMinLength, constants.UsernameMaxLength)
	passwordRule = fmt.Sprintf("min=%d", constants.PasswordMinLength)
)

// ValidateUsername counts characters, not bytes.
func ValidateUsername(username string) error {
	if err := validate.Var(username, usernameRule); err != nil {
		return lengthError("username", err, constants.UsernameMinLength, constants.UsernameMaxLength, "characters")
	}
	return nil
}

// ValidatePassword enforces a minimum in characters and a maximum in bytes,
// the most bcrypt will hash.
func ValidatePassword(password string) error {
	if err := validate.Var(password, passwordRule); err != nil {
		return lengthError("password", err, constants.PasswordMinLength, 0, "")
	}
	if len(password) > constants.PasswordMaxBytes {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("password must be at most %d bytes long", constants.PasswordMaxBytes))
	}
	return nil
}

func ValidateCredentials(username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	return ValidatePassword(password)
}

// CredentialFromInput accepts only JSON strings. Numbers, objects, null and
// absent fields are rejected rather than coerced.
func CredentialFromInput(field string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", ErrInvalidInput.WithMessage(field + " must be a string")
	}
	return s, nil
}

func lengthError(field string, err error, min, max int, unit string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be at most %d %s long", field, max, unit))
	}
	return ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be at least %d characters long", field, min))
}
