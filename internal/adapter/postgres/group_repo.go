package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pushups/internal/domain"

	"github.com/google/uuid"
)

const groupColumns = "id, code, name, group_target, created_at"

// CreateGroup inserts a group. A code collision returns domain.ErrGroupCodeTaken.
func (d *DB) CreateGroup(ctx context.Context, name, code string, target *int) (*domain.Group, error) {
	row := d.sql.QueryRowContext(ctx,
		"INSERT INTO groups (name, code, group_target) VALUES ($1, $2, $3) RETURNING "+groupColumns,
		name, code, nullInt(target),
	)
	g, err := scanGroup(row)
	if isUniqueViolation(err) {
		return nil, domain.ErrGroupCodeTaken
	}
	return g, err
}

// GroupByCode retrieves a group by invite code.
func (d *DB) GroupByCode(ctx context.Context, code string) (*domain.Group, error) {
	g, err := scanGroup(d.sql.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE code = $1", code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

// GroupByID retrieves a group by id.
func (d *DB) GroupByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	g, err := scanGroup(d.sql.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

func scanGroup(row rowScanner) (*domain.Group, error) {
	var g domain.Group
	var target sql.NullInt64
	if err := row.Scan(&g.ID, &g.Code, &g.Name, &target, &g.CreatedAt); err != nil {
		return nil, err
	}
	if target.Valid {
		n := int(target.Int64)
		g.GroupTarget = &n
	}
	return &g, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
