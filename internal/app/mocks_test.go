package app

import (
	"context"
	"time"

	"pushups/internal/domain"

	"github.com/google/uuid"
)

type mockGroupRepo struct {
	createFn func(ctx context.Context, name, code string, target *int) (*domain.Group, error)
	byCodeFn func(ctx context.Context, code string) (*domain.Group, error)
	byIDFn   func(ctx context.Context, id uuid.UUID) (*domain.Group, error)
}

func (m *mockGroupRepo) CreateGroup(ctx context.Context, name, code string, target *int) (*domain.Group, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, code, target)
	}
	return &domain.Group{ID: uuid.New(), Name: name, Code: code, GroupTarget: target}, nil
}

func (m *mockGroupRepo) GroupByCode(ctx context.Context, code string) (*domain.Group, error) {
	if m.byCodeFn != nil {
		return m.byCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockGroupRepo) GroupByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	if m.byIDFn != nil {
		return m.byIDFn(ctx, id)
	}
	return nil, nil
}

type mockProfileRepo struct {
	createFn       func(ctx context.Context, p domain.NewProfile) (*domain.Profile, error)
	byIDFn         func(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	byUsernameFn   func(ctx context.Context, groupID uuid.UUID, username string) (*domain.Profile, error)
	listFn         func(ctx context.Context, groupID uuid.UUID) ([]domain.Profile, error)
	updateTargetFn func(ctx context.Context, id uuid.UUID, target int) error
}

func (m *mockProfileRepo) CreateProfile(ctx context.Context, p domain.NewProfile) (*domain.Profile, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return &domain.Profile{ID: uuid.New(), GroupID: p.GroupID, Username: p.Username, AvatarURL: p.AvatarURL, DailyTarget: p.DailyTarget}, nil
}

func (m *mockProfileRepo) ProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	if m.byIDFn != nil {
		return m.byIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProfileRepo) ProfileByUsername(ctx context.Context, groupID uuid.UUID, username string) (*domain.Profile, error) {
	if m.byUsernameFn != nil {
		return m.byUsernameFn(ctx, groupID, username)
	}
	return nil, nil
}

func (m *mockProfileRepo) ListGroupProfiles(ctx context.Context, groupID uuid.UUID) ([]domain.Profile, error) {
	if m.listFn != nil {
		return m.listFn(ctx, groupID)
	}
	return nil, nil
}

func (m *mockProfileRepo) UpdateDailyTarget(ctx context.Context, id uuid.UUID, target int) error {
	if m.updateTargetFn != nil {
		return m.updateTargetFn(ctx, id, target)
	}
	return nil
}

type mockLogRepo struct {
	forDayFn   func(ctx context.Context, userID uuid.UUID, day string) (*domain.Log, error)
	upsertFn   func(ctx context.Context, userID uuid.UUID, day string, count int, sets domain.SetsBreakdown) (*domain.Log, error)
	deleteFn   func(ctx context.Context, userID, id uuid.UUID) error
	listFn     func(ctx context.Context, userID uuid.UUID, from, to string) ([]domain.Log, error)
	recentFn   func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Log, error)
	forUsersFn func(ctx context.Context, userIDs []uuid.UUID, from, to string) ([]domain.Log, error)
}

func (m *mockLogRepo) LogForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.Log, error) {
	if m.forDayFn != nil {
		return m.forDayFn(ctx, userID, day)
	}
	return nil, nil
}

func (m *mockLogRepo) UpsertLog(ctx context.Context, userID uuid.UUID, day string, count int, sets domain.SetsBreakdown) (*domain.Log, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, day, count, sets)
	}
	return &domain.Log{ID: uuid.New(), UserID: userID, Date: day, Count: count, SetsBreakdown: sets}, nil
}

func (m *mockLogRepo) DeleteLog(ctx context.Context, userID, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func (m *mockLogRepo) ListLogs(ctx context.Context, userID uuid.UUID, from, to string) ([]domain.Log, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, from, to)
	}
	return nil, nil
}

func (m *mockLogRepo) ListRecentLogs(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Log, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockLogRepo) ListLogsForUsers(ctx context.Context, userIDs []uuid.UUID, from, to string) ([]domain.Log, error) {
	if m.forUsersFn != nil {
		return m.forUsersFn(ctx, userIDs, from, to)
	}
	return nil, nil
}

type mockStreaks struct {
	calcFn func(ctx context.Context, userID uuid.UUID, target int, asOf string) (int, error)
}

func (m *mockStreaks) CalculateStreak(ctx context.Context, userID uuid.UUID, target int, asOf string) (int, error) {
	if m.calcFn != nil {
		return m.calcFn(ctx, userID, target, asOf)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, profileID uuid.UUID, tokenHash string, expiresAt time.Time) error
	getFn           func(ctx context.Context, tokenHash string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, tokenHash string) error
	deleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockSessionRepo) CreateSession(ctx context.Context, profileID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, profileID, tokenHash, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) SessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, tokenHash)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tokenHash)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return 0, nil
}

type mockFeed struct {
	subscribeFn func(ctx context.Context) (<-chan domain.LogChange, error)
}

func (m *mockFeed) SubscribeLogChanges(ctx context.Context) (<-chan domain.LogChange, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx)
	}
	return make(chan domain.LogChange), nil
}

func testIdentity(target int) *domain.Identity {
	g := domain.Group{ID: uuid.New(), Code: "ABCDEF", Name: "Crew"}
	return &domain.Identity{
		Profile: domain.Profile{ID: uuid.New(), Username: "alice", DailyTarget: target, GroupID: g.ID},
		Group:   g,
	}
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 12, 0, 0, 0, time.Local) }
}
