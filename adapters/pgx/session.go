package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/portal/core"
)

func (a *Adapter) CreateSession(ctx context.Context, session *core.Session) error {
	query := `INSERT INTO sessions (id, user_id, token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := a.pool.Exec(ctx, query, session.ID, session.UserID, session.Token,
		session.ExpiresAt, session.CreatedAt, session.UpdatedAt)
	return err
}

// GetSessionByToken joins the owning user so the caller can check the
// active flag without a second round trip.
func (a *Adapter) GetSessionByToken(ctx context.Context, token string) (*core.SessionData, error) {
	q := `SELECT s.id, s.user_id, s.token, s.expires_at, s.created_at, s.updated_at,
		u.id, u.email, u.password_hash, u.first_name, u.last_name, u.phone,
		u.is_active, u.two_factor_enabled, u.two_factor_secret, u.avatar_url, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1`

	session := &core.Session{}
	user := &core.User{}
	err := a.pool.QueryRow(ctx, q, token).Scan(
		&session.ID, &session.UserID, &session.Token, &session.ExpiresAt,
		&session.CreatedAt, &session.UpdatedAt,
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Phone, &user.IsActive, &user.TwoFactorEnabled, &user.TwoFactorSecret,
		&user.AvatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}

	return &core.SessionData{User: user, Session: session}, nil
}

func (a *Adapter) DeleteSessionByToken(ctx context.Context, token string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}
