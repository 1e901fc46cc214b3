package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"pushups/internal/domain"

	"github.com/google/uuid"
)

const (
	maxGroupNameLen = 50
	maxCodeAttempts = 5
)

// GroupService encapsulates group creation and lookup by invite code.
type GroupService struct {
	repo   domain.GroupRepository
	random io.Reader
}

// NewGroupService creates a GroupService backed by the given repository.
func NewGroupService(repo domain.GroupRepository) *GroupService {
	return &GroupService{repo: repo, random: rand.Reader}
}

// WithRandom replaces the entropy source used for invite codes.
func (s *GroupService) WithRandom(r io.Reader) *GroupService {
	s.random = r
	return s
}

// Create validates the input and stores a new group under a fresh invite code,
// retrying when the code collides with an existing group.
func (s *GroupService) Create(ctx context.Context, name string, target *int) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxGroupNameLen {
		return nil, domain.Invalid("name", "must be at most %d characters", maxGroupNameLen)
	}
	if target != nil && *target <= 0 {
		return nil, domain.Invalid("groupTarget", "must be positive")
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := domain.GenerateGroupCode(s.random)
		if err != nil {
			return nil, err
		}
		g, err := s.repo.CreateGroup(ctx, name, code, target)
		if errors.Is(err, domain.ErrGroupCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("create group: %w after %d attempts", domain.ErrGroupCodeTaken, maxCodeAttempts)
}

// Join looks up the group a user wants to join.
func (s *GroupService) Join(ctx context.Context, code string) (*domain.Group, error) {
	code = domain.NormalizeGroupCode(code)
	if len(code) != domain.GroupCodeLength {
		return nil, domain.Invalid("code", "must be %d characters", domain.GroupCodeLength)
	}
	if !domain.ValidGroupCode(code) {
		return nil, domain.Invalid("code", "contains characters that are never used in invite codes")
	}
	g, err := s.repo.GroupByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrGroupNotFound
	}
	return g, nil
}

// Get returns a group by id.
func (s *GroupService) Get(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	g, err := s.repo.GroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrGroupNotFound
	}
	return g, nil
}
