package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RegisterInput contains the data needed to register a new user
type RegisterInput struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

// LoginInput contains the credentials for authentication
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode"`
}

// LoginResult is either a fully authenticated user or the intermediate
// "requires second factor" state. RequiresTwoFactor is not an error: it
// signals the caller to prompt for a code and re-invoke Login. No session
// exists at that point - session issuance is a separate explicit step.
type LoginResult struct {
	User              *User `json:"user,omitempty"`
	RequiresTwoFactor bool  `json:"requiresTwoFactor,omitempty"`
}

// AuthService composes the credential store, password hasher, and TOTP
// engine into register/login/2FA operations.
type AuthService struct {
	db     StorageAdapter
	hasher PasswordHandler
	totp   *TOTPEngine
}

func NewAuthService(db StorageAdapter, hasher PasswordHandler, totp *TOTPEngine) *AuthService {
	return &AuthService{
		db:     db,
		hasher: hasher,
		totp:   totp,
	}
}

// Register creates a new user with email and password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	// Step 1: Check if the email is already taken (case-sensitive as stored)
	existing, err := s.db.GetUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	// Step 2: Hash the password
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Create the user
	user := &User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		IsActive:     true,
	}

	if err := s.db.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and, when 2FA is enabled, the TOTP code.
// Unknown email, inactive account, and wrong password all yield
// ErrInvalidCredentials so the response never reveals which one it was.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	// Step 1: Find the user by email
	user, err := s.db.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// Step 2: Verify the password
	valid, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	// Step 3: Second factor, if enrolled
	if user.TwoFactorEnabled && user.TwoFactorSecret != nil {
		if input.TOTPCode == "" {
			return &LoginResult{RequiresTwoFactor: true}, nil
		}
		if !s.totp.Verify(*user.TwoFactorSecret, input.TOTPCode) {
			return nil, ErrInvalidTwoFactorCode
		}
	}

	return &LoginResult{User: user}, nil
}

// GenerateTwoFactorSecret produces a fresh secret and QR code for the user.
// The secret is not persisted until EnableTwoFactor succeeds.
func (s *AuthService) GenerateTwoFactorSecret(ctx context.Context, userID string) (*TwoFactorSecret, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.totp.Generate(user.Email)
}

// EnableTwoFactor verifies code against the supplied secret and, on success,
// stores the enabled flag and the secret in a single update.
func (s *AuthService) EnableTwoFactor(ctx context.Context, userID, secret, code string) error {
	if !s.totp.Verify(secret, code) {
		return ErrInvalidVerificationCode
	}

	if err := s.db.SetTwoFactor(ctx, userID, true, &secret); err != nil {
		return fmt.Errorf("failed to enable two-factor: %w", err)
	}
	return nil
}

// DisableTwoFactor unconditionally clears both 2FA fields. No proof of
// current factor possession is demanded; see DESIGN.md for the rationale.
func (s *AuthService) DisableTwoFactor(ctx context.Context, userID string) error {
	if err := s.db.SetTwoFactor(ctx, userID, false, nil); err != nil {
		return fmt.Errorf("failed to disable two-factor: %w", err)
	}
	return nil
}
