// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"pushups/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrSessionNotFound indicates that the token does not match a live session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
)

// SessionService resolves a (username, group code) pair to a profile and
// manages the opaque session tokens handed to clients.
type SessionService struct {
	groups   domain.GroupRepository
	profiles domain.ProfileRepository
	sessions domain.SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService creates a session service whose tokens live for ttl.
func NewSessionService(groups domain.GroupRepository, profiles domain.ProfileRepository, sessions domain.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		groups:   groups,
		profiles: profiles,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Login finds the profile named username inside the group with the given
// invite code and opens a session for it.
func (s *SessionService) Login(ctx context.Context, username, code string) (string, *domain.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil, domain.Invalid("username", "is required")
	}
	return s.LoginAs(ctx, code, username)
}

// LoginAs opens a session for the first candidate username that exists in the
// group with the given invite code. Empty candidates are skipped.
func (s *SessionService) LoginAs(ctx context.Context, code string, candidates ...string) (string, *domain.Identity, error) {
	code = domain.NormalizeGroupCode(code)
	if len(code) != domain.GroupCodeLength {
		return "", nil, domain.Invalid("groupCode", "must be %d characters", domain.GroupCodeLength)
	}

	group, err := s.groups.GroupByCode(ctx, code)
	if err != nil {
		return "", nil, err
	}
	if group == nil {
		return "", nil, domain.ErrGroupNotFound
	}

	for _, username := range candidates {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}
		profile, err := s.profiles.ProfileByUsername(ctx, group.ID, username)
		if err != nil {
			return "", nil, err
		}
		if profile == nil {
			continue
		}
		token, err := s.Start(ctx, profile.ID)
		if err != nil {
			return "", nil, err
		}
		return token, &domain.Identity{Profile: *profile, Group: *group}, nil
	}
	return "", nil, domain.ErrProfileNotFound
}

// Start opens a session for an existing profile.
func (s *SessionService) Start(ctx context.Context, profileID uuid.UUID) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.CreateSession(ctx, profileID, HashToken(token), s.now().Add(s.ttl)); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a session token to the acting profile and its group.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	hash := HashToken(token)

	session, err := s.sessions.SessionByTokenHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		_ = s.sessions.DeleteSession(ctx, hash)
		return nil, ErrSessionExpired
	}

	profile, err := s.profiles.ProfileByID(ctx, session.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		_ = s.sessions.DeleteSession(ctx, hash)
		return nil, ErrSessionNotFound
	}

	group, err := s.groups.GroupByID(ctx, profile.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		_ = s.sessions.DeleteSession(ctx, hash)
		return nil, ErrSessionNotFound
	}

	return &domain.Identity{Profile: *profile, Group: *group}, nil
}

// Logout invalidates a session.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, HashToken(token))
}

// PurgeExpired removes expired sessions and reports how many were deleted.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

// HashToken is the storage form of a session token.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
