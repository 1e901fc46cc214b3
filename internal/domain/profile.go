package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Daily target bounds and default.
const (
	MinDailyTarget     = 1
	MaxDailyTarget     = 1000
	DefaultDailyTarget = 50
)

// Profile is a user's identity within exactly one group.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	AvatarURL   *string   `json:"avatarUrl"`
	DailyTarget int       `json:"dailyTarget"`
	GroupID     uuid.UUID `json:"groupId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewProfile carries the fields needed to create a profile.
type NewProfile struct {
	GroupID     uuid.UUID
	Username    string
	AvatarURL   *string
	DailyTarget int
}

// ProfileRepository is the port for profile persistence.
type ProfileRepository interface {
	// CreateProfile returns ErrUsernameTaken when the username already exists in the group.
	CreateProfile(ctx context.Context, p NewProfile) (*Profile, error)
	ProfileByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	ProfileByUsername(ctx context.Context, groupID uuid.UUID, username string) (*Profile, error)
	ListGroupProfiles(ctx context.Context, groupID uuid.UUID) ([]Profile, error)
	UpdateDailyTarget(ctx context.Context, id uuid.UUID, target int) error
}

// ValidDailyTarget reports whether target is within the allowed range.
func ValidDailyTarget(target int) bool {
	return target >= MinDailyTarget && target <= MaxDailyTarget
}
