package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pushups/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const logColumns = "id, user_id, date::text, count, sets_breakdown, created_at"

// Open bounds map to NULL, which the range predicate treats as unbounded.
const logRange = "date >= COALESCE(NULLIF($2, '')::date, '-infinity'::date) AND date <= COALESCE(NULLIF($3, '')::date, 'infinity'::date)"

// LogForDay returns the user's log for day, or nil.
func (d *DB) LogForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.Log, error) {
	l, err := scanLog(d.sql.QueryRowContext(ctx,
		"SELECT "+logColumns+" FROM logs WHERE user_id = $1 AND date = $2::date", userID, day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

// UpsertLog writes the row for (userID, day), replacing count and breakdown.
func (d *DB) UpsertLog(ctx context.Context, userID uuid.UUID, day string, count int, sets domain.SetsBreakdown) (*domain.Log, error) {
	return scanLog(d.sql.QueryRowContext(ctx,
		`INSERT INTO logs (user_id, date, count, sets_breakdown) VALUES ($1, $2::date, $3, $4::jsonb)
		ON CONFLICT (user_id, date) DO UPDATE SET count = EXCLUDED.count, sets_breakdown = EXCLUDED.sets_breakdown
		RETURNING `+logColumns,
		userID, day, count, sets,
	))
}

// DeleteLog removes a log by id, scoped to its owner.
func (d *DB) DeleteLog(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM logs WHERE id = $1 AND user_id = $2", id, userID)
	return err
}

// ListLogs returns the user's logs in ascending date order.
func (d *DB) ListLogs(ctx context.Context, userID uuid.UUID, from, to string) ([]domain.Log, error) {
	return d.queryLogs(ctx,
		"SELECT "+logColumns+" FROM logs WHERE user_id = $1 AND "+logRange+" ORDER BY date",
		userID, from, to)
}

// ListRecentLogs returns up to limit logs, newest date first.
func (d *DB) ListRecentLogs(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Log, error) {
	return d.queryLogs(ctx,
		"SELECT "+logColumns+" FROM logs WHERE user_id = $1 ORDER BY date DESC LIMIT $2",
		userID, limit)
}

// ListLogsForUsers returns logs of all given users in ascending date order.
func (d *DB) ListLogsForUsers(ctx context.Context, userIDs []uuid.UUID, from, to string) ([]domain.Log, error) {
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}
	return d.queryLogs(ctx,
		"SELECT "+logColumns+" FROM logs WHERE user_id = ANY($1::uuid[]) AND "+logRange+" ORDER BY date, user_id",
		pq.Array(ids), from, to)
}

// CalculateStreak runs the calculate_streak function as of the given day.
func (d *DB) CalculateStreak(ctx context.Context, userID uuid.UUID, targetReps int, asOf string) (int, error) {
	var streak sql.NullInt64
	err := d.sql.QueryRowContext(ctx,
		"SELECT calculate_streak($1, $2, $3::date)", userID, targetReps, asOf,
	).Scan(&streak)
	if err != nil {
		return 0, err
	}
	if !streak.Valid {
		return 0, domain.Malformed("calculate_streak returned NULL")
	}
	return int(streak.Int64), nil
}

func (d *DB) queryLogs(ctx context.Context, query string, args ...any) ([]domain.Log, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.Log{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanLog(row rowScanner) (*domain.Log, error) {
	var l domain.Log
	var sets []byte
	if err := row.Scan(&l.ID, &l.UserID, &l.Date, &l.Count, &sets, &l.CreatedAt); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDateKey(l.Date); err != nil {
		return nil, domain.Malformed("log %s: %v", l.ID, err)
	}
	if l.Count < 0 {
		return nil, domain.Malformed("log %s: negative count %d", l.ID, l.Count)
	}
	l.SetsBreakdown = domain.DecodeSetsBreakdown(sets)
	return &l, nil
}
