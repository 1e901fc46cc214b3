package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pushups/internal/domain"

	"github.com/google/uuid"
)

// CreateSession stores a session keyed by the token hash.
func (d *DB) CreateSession(ctx context.Context, profileID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO sessions (token_hash, profile_id, expires_at, created_at) VALUES ($1, $2, $3, $4)",
		tokenHash, profileID, expiresAt, time.Now(),
	)
	return err
}

// SessionByTokenHash retrieves a session by token hash.
func (d *DB) SessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var s domain.Session
	err := d.sql.QueryRowContext(ctx,
		"SELECT token_hash, profile_id, expires_at, created_at FROM sessions WHERE token_hash = $1",
		tokenHash,
	).Scan(&s.TokenHash, &s.ProfileID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession deletes a session by token hash.
func (d *DB) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
	return err
}

// DeleteExpiredSessions deletes sessions that expired before now.
func (d *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
