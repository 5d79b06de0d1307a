package core

import (
	"regexp"
	"strings"
	"time"
)

// Input shape checks run before any business logic. Go's regexp has no
// lookahead, so the password policy is checked class by class.

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

const passwordSpecials = "@$!%*?&"

// ValidateRegisterInput shape-checks a registration request.
func ValidateRegisterInput(input RegisterInput) error {
	if input.Email == "" {
		return ErrEmailRequired
	}
	if !emailRe.MatchString(input.Email) {
		return ErrInvalidEmail
	}
	if err := ValidatePassword(input.Password); err != nil {
		return err
	}
	if input.Phone != nil && !phoneRe.MatchString(*input.Phone) {
		return ErrInvalidPhone
	}
	if !validOptionalLen(input.FirstName, 50) || !validOptionalLen(input.LastName, 50) {
		return ErrInvalidInput
	}
	return nil
}

// ValidateLoginInput shape-checks a login request.
func ValidateLoginInput(input LoginInput) error {
	if input.Email == "" {
		return ErrEmailRequired
	}
	if !emailRe.MatchString(input.Email) {
		return ErrInvalidEmail
	}
	if input.Password == "" {
		return ErrPasswordRequired
	}
	if input.TOTPCode != "" && len(input.TOTPCode) != 6 {
		return ErrInvalidTOTPCode
	}
	return nil
}

// ValidatePassword enforces the registration password policy: minimum 8
// characters with upper, lower, digit, and one of @$!%*?&.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < 8 {
		return ErrPasswordTooWeak
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return ErrPasswordTooWeak
	}
	return nil
}

// ValidateTOTPCode checks the fixed 6-character code shape.
func ValidateTOTPCode(code string) error {
	if len(code) != 6 {
		return ErrInvalidTOTPCode
	}
	return nil
}

// ValidateCreateProjectInput shape-checks a project creation request.
func ValidateCreateProjectInput(input CreateProjectInput) error {
	if input.Name == "" || len(input.Name) > 100 {
		return ErrInvalidInput
	}
	if !validOptionalLen(input.Description, 500) {
		return ErrInvalidInput
	}
	return nil
}

// ValidateUpdateProjectInput shape-checks a project update request.
func ValidateUpdateProjectInput(input UpdateProjectInput) error {
	if input.Name != nil && (*input.Name == "" || len(*input.Name) > 100) {
		return ErrInvalidInput
	}
	if !validOptionalLen(input.Description, 500) {
		return ErrInvalidInput
	}
	if input.Status != nil && !ValidProjectStatus(*input.Status) {
		return ErrInvalidInput
	}
	return nil
}

// ValidateUpdateProjectDetailsInput shape-checks a details update request.
// now anchors the birthday-not-in-the-future check.
func ValidateUpdateProjectDetailsInput(input UpdateProjectDetailsInput, now time.Time) error {
	if !validOptionalLen(input.FirstName, 50) ||
		!validOptionalLen(input.LastName, 50) ||
		!validOptionalLen(input.Street, 100) ||
		!validOptionalLen(input.HouseNumber, 20) ||
		!validOptionalLen(input.ZipCode, 20) ||
		!validOptionalLen(input.City, 50) ||
		!validOptionalLen(input.Country, 50) {
		return ErrInvalidInput
	}
	if input.Birthday != nil && input.Birthday.After(now) {
		return ErrInvalidInput
	}
	return nil
}

func validOptionalLen(s *string, max int) bool {
	if s == nil {
		return true
	}
	return *s != "" && len(*s) <= max
}
