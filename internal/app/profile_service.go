package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"pushups/internal/domain"

	"github.com/google/uuid"
)

const (
	maxUsernameLen = 30
	maxAvatarBytes = 16
)

// DefaultAvatar is used when a profile is created without one.
const DefaultAvatar = "💪"

// ProfileService encapsulates profile setup and settings.
type ProfileService struct {
	profiles domain.ProfileRepository
	groups   domain.GroupRepository
}

// NewProfileService creates a ProfileService.
func NewProfileService(profiles domain.ProfileRepository, groups domain.GroupRepository) *ProfileService {
	return &ProfileService{profiles: profiles, groups: groups}
}

// Create adds a profile to a group. A zero target means the default.
func (s *ProfileService) Create(ctx context.Context, groupID uuid.UUID, username, avatar string, target int) (*domain.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.Invalid("username", "is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return nil, domain.Invalid("username", "must be at most %d characters", maxUsernameLen)
	}
	if target == 0 {
		target = domain.DefaultDailyTarget
	}
	if !domain.ValidDailyTarget(target) {
		return nil, domain.Invalid("dailyTarget", "must be between %d and %d", domain.MinDailyTarget, domain.MaxDailyTarget)
	}
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		avatar = DefaultAvatar
	}
	if len(avatar) > maxAvatarBytes {
		return nil, domain.Invalid("avatar", "must be a single emoji or short text")
	}

	g, err := s.groups.GroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrGroupNotFound
	}

	return s.profiles.CreateProfile(ctx, domain.NewProfile{
		GroupID:     groupID,
		Username:    username,
		AvatarURL:   &avatar,
		DailyTarget: target,
	})
}

// UpdateDailyTarget changes the acting profile's daily target and returns the
// updated profile.
func (s *ProfileService) UpdateDailyTarget(ctx context.Context, id *domain.Identity, target int) (*domain.Profile, error) {
	if !domain.ValidDailyTarget(target) {
		return nil, domain.Invalid("dailyTarget", "must be between %d and %d", domain.MinDailyTarget, domain.MaxDailyTarget)
	}
	if err := s.profiles.UpdateDailyTarget(ctx, id.Profile.ID, target); err != nil {
		return nil, err
	}
	p := id.Profile
	p.DailyTarget = target
	return &p, nil
}
