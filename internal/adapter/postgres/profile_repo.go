package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pushups/internal/domain"

	"github.com/google/uuid"
)

const profileColumns = "id, username, avatar_url, daily_target, group_id, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateProfile inserts a member. A duplicate username returns domain.ErrUsernameTaken.
func (d *DB) CreateProfile(ctx context.Context, p domain.NewProfile) (*domain.Profile, error) {
	prof, err := scanProfile(d.sql.QueryRowContext(ctx,
		"INSERT INTO profiles (group_id, username, avatar_url, daily_target) VALUES ($1, $2, $3, $4) RETURNING "+profileColumns,
		p.GroupID, p.Username, p.AvatarURL, p.DailyTarget,
	))
	if isUniqueViolation(err) {
		return nil, domain.ErrUsernameTaken
	}
	return prof, err
}

// ProfileByID retrieves a profile by id.
func (d *DB) ProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(d.sql.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ProfileByUsername retrieves a group member by username.
func (d *DB) ProfileByUsername(ctx context.Context, groupID uuid.UUID, username string) (*domain.Profile, error) {
	p, err := scanProfile(d.sql.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE group_id = $1 AND username = $2", groupID, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ListGroupProfiles returns the group's members ordered by join time.
func (d *DB) ListGroupProfiles(ctx context.Context, groupID uuid.UUID) ([]domain.Profile, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE group_id = $1 ORDER BY created_at, username", groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateDailyTarget sets a profile's daily target.
func (d *DB) UpdateDailyTarget(ctx context.Context, id uuid.UUID, target int) error {
	res, err := d.sql.ExecContext(ctx, "UPDATE profiles SET daily_target = $1 WHERE id = $2", target, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	var avatar sql.NullString
	if err := row.Scan(&p.ID, &p.Username, &avatar, &p.DailyTarget, &p.GroupID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if avatar.Valid {
		p.AvatarURL = &avatar.String
	}
	return &p, nil
}
