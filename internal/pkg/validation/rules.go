package validation

import (
	"regexp"
	"strings"

	"github.com/selin/labmatch/internal/pkg/apperrors"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)

// ValidateEmailFormat checks that the email is non-empty and well-formed.
func ValidateEmailFormat(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "email cannot be empty").WithField("email")
	}
	if !emailRegex.MatchString(strings.ToLower(email)) {
		return apperrors.NewCustomError(apperrors.ErrInvalidEmail, "email format is invalid").WithField("email")
	}
	return nil
}

// ValidateInstitutionalEmail enforces the institutional domain restriction.
// The check runs before any identity-provider or database call: an email
// outside the configured suffix must never reach those systems.
func ValidateInstitutionalEmail(email, domainSuffix string) error {
	if err := ValidateEmailFormat(email); err != nil {
		return err
	}
	if domainSuffix == "" {
		return nil
	}
	if !strings.HasSuffix(strings.ToLower(email), strings.ToLower(domainSuffix)) {
		return apperrors.NewCustomError(apperrors.ErrInvalidEmailDomain,
			"only "+domainSuffix+" email addresses may register").WithField("email")
	}
	return nil
}

// ValidatePassword checks if password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "password cannot be empty").WithField("password")
	}
	if len(password) < 8 {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, "password must be at least 8 characters long").WithField("password")
	}

	hasLetter := false
	hasDigit := false
	for _, char := range password {
		switch {
		case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z':
			hasLetter = true
		case char >= '0' && char <= '9':
			hasDigit = true
		}
	}
	if !hasLetter {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, "password must contain at least one letter").WithField("password")
	}
	if !hasDigit {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, "password must contain at least one digit").WithField("password")
	}

	return nil
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,32}$`)

// ValidateUsername checks the one-time-setup username format.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed,
			"username must be 3-32 characters of letters, digits, underscore or dot").WithField("username")
	}
	return nil
}
