package service

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/tvsaude/auth-service/models"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 30
	passwordMinLength = 8
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

// validationError wraps [ErrValidation] with the violated rule so callers
// can both match the class and report the specific failure.
func validationError(rule string) error {
	return fmt.Errorf("%w: %s", ErrValidation, rule)
}

// validateUsername enforces the username format: 3–30 characters,
// alphanumeric and underscore only.
func validateUsername(username string) error {
	if len(username) < usernameMinLength || len(username) > usernameMaxLength {
		return validationError("username must be 3-30 characters long")
	}
	if !usernamePattern.MatchString(username) {
		return validationError("username may contain only letters, digits and underscore")
	}

	return nil
}

// validateEmail enforces an RFC-like email shape. It is a format gate, not
// a deliverability check.
func validateEmail(email string) error {
	if email == "" || !emailPattern.MatchString(email) {
		return validationError("email address is malformed")
	}

	return nil
}

// validatePassword enforces the strength policy: minimum 8 characters with
// at least one uppercase letter, one lowercase letter, one digit, and one
// symbol.
func validatePassword(password string) error {
	if len(password) < passwordMinLength {
		return validationError("password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	switch {
	case !hasUpper:
		return validationError("password must contain an uppercase letter")
	case !hasLower:
		return validationError("password must contain a lowercase letter")
	case !hasDigit:
		return validationError("password must contain a digit")
	case !hasSymbol:
		return validationError("password must contain a symbol")
	}

	return nil
}

// validateLevel rejects permission levels outside the fixed set.
func validateLevel(level models.PermissionLevel) error {
	if !level.Valid() {
		return validationError("unknown permission level")
	}

	return nil
}
