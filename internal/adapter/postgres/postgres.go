// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pushups/internal/domain"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var (
	_ domain.GroupRepository   = (*DB)(nil)
	_ domain.ProfileRepository = (*DB)(nil)
	_ domain.LogRepository     = (*DB)(nil)
	_ domain.StreakCalculator  = (*DB)(nil)
	_ domain.SessionRepository = (*DB)(nil)
)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

const streakFunction = `
CREATE OR REPLACE FUNCTION calculate_streak(user_uuid UUID, target_reps INTEGER, as_of DATE DEFAULT CURRENT_DATE)
RETURNS INTEGER AS $$
DECLARE
	day_cursor DATE := as_of;
	streak INTEGER := 0;
BEGIN
	IF NOT EXISTS (SELECT 1 FROM logs WHERE user_id = user_uuid AND date = day_cursor AND count >= target_reps) THEN
		day_cursor := day_cursor - 1;
	END IF;
	WHILE EXISTS (SELECT 1 FROM logs WHERE user_id = user_uuid AND date = day_cursor AND count >= target_reps) LOOP
		streak := streak + 1;
		day_cursor := day_cursor - 1;
	END LOOP;
	RETURN streak;
END;
$$ LANGUAGE plpgsql STABLE;`

const notifyFunction = `
CREATE OR REPLACE FUNCTION notify_log_change() RETURNS TRIGGER AS $$
DECLARE
	rec RECORD;
BEGIN
	IF TG_OP = 'DELETE' THEN
		rec := OLD;
	ELSE
		rec := NEW;
	END IF;
	PERFORM pg_notify('` + changeChannel + `', json_build_object(
		'op', TG_OP,
		'user_id', rec.user_id,
		'group_id', (SELECT group_id FROM profiles WHERE id = rec.user_id),
		'date', rec.date::text
	)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;`

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS pgcrypto;",
		`CREATE TABLE IF NOT EXISTS groups (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			code TEXT UNIQUE NOT NULL CHECK (char_length(code) = 6),
			name TEXT NOT NULL,
			group_target INTEGER CHECK (group_target IS NULL OR group_target > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			username TEXT NOT NULL,
			avatar_url TEXT,
			daily_target INTEGER NOT NULL DEFAULT 50 CHECK (daily_target BETWEEN 1 AND 1000),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (group_id, username)
		);`,
		`CREATE TABLE IF NOT EXISTS logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			count INTEGER NOT NULL CHECK (count >= 0),
			sets_breakdown JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, date)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_logs_date ON logs(date);",
		`CREATE TABLE IF NOT EXISTS sessions (
			token_hash TEXT PRIMARY KEY,
			profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
		streakFunction,
		notifyFunction,
		"DROP TRIGGER IF EXISTS logs_notify ON logs;",
		"CREATE TRIGGER logs_notify AFTER INSERT OR UPDATE OR DELETE ON logs FOR EACH ROW EXECUTE FUNCTION notify_log_change();",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
