package core

import "errors"

// Sentinel errors returned by the core services. The fiber adapter maps each
// one to an HTTP status; anything unlisted there reports as a 500.

// User errors
var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials") // same for unknown email, bad password, inactive account
)

// Two-factor errors
var (
	ErrInvalidTwoFactorCode    = errors.New("invalid 2FA code")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
)

// Session errors
var (
	ErrMissingAuthHeader = errors.New("missing or invalid authorization header")
	ErrInvalidSession    = errors.New("invalid or expired session")
	ErrSessionNotFound   = errors.New("session not found")
)

// Project errors
var (
	// ErrProjectNotFound also covers owner mismatch so IDs cannot be probed.
	ErrProjectNotFound = errors.New("project not found")
)

// File errors
var (
	ErrFileNotFound   = errors.New("file not found")
	ErrNotAnImage     = errors.New("only image files are allowed")
	ErrFileTooLarge   = errors.New("file size too large")
	ErrNoFileUploaded = errors.New("no file uploaded")
)

// Validation errors
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooWeak  = errors.New("password must be at least 8 characters and contain uppercase, lowercase, number and special character")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidPhone     = errors.New("phone must be in E.164 format")
	ErrInvalidTOTPCode  = errors.New("2FA code must be exactly 6 characters")
	ErrInvalidInput     = errors.New("invalid input")
)
