package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/portal/core"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone,
	is_active, two_factor_enabled, two_factor_secret, avatar_url, created_at, updated_at`

func scanUser(row pgx.Row) (*core.User, error) {
	user := &core.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName,
		&user.LastName, &user.Phone, &user.IsActive, &user.TwoFactorEnabled,
		&user.TwoFactorSecret, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	query := `INSERT INTO users (id, email, password_hash, first_name, last_name, phone, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	var createdAt, updatedAt time.Time
	err := a.pool.QueryRow(ctx, query, user.ID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.Phone, user.IsActive).Scan(&createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrUserExists
		}
		return err
	}

	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(a.pool.QueryRow(ctx, q, email))
}

func (a *Adapter) SetTwoFactor(ctx context.Context, userID string, enabled bool, secret *string) error {
	q := `UPDATE users SET two_factor_enabled = $1, two_factor_secret = $2, updated_at = now()
		WHERE id = $3`
	tag, err := a.pool.Exec(ctx, q, enabled, secret, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (a *Adapter) SetAvatarURL(ctx context.Context, userID string, avatarURL string) error {
	q := `UPDATE users SET avatar_url = $1, updated_at = now() WHERE id = $2`
	tag, err := a.pool.Exec(ctx, q, avatarURL, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}
