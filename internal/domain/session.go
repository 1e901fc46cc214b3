// Package domain contains the core business entities, ports, and the pure
// streak and aggregate computations.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is a persisted login. Only the hash of the bearer token is stored.
type Session struct {
	TokenHash string
	ProfileID uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity is the resolved session: who is acting and in which group.
// It is passed explicitly into every use case instead of living in ambient state.
type Identity struct {
	Profile Profile `json:"profile"`
	Group   Group   `json:"group"`
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	CreateSession(ctx context.Context, profileID uuid.UUID, tokenHash string, expiresAt time.Time) error
	SessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
