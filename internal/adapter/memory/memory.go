// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pushups/internal/domain"

	"github.com/google/uuid"
)

const feedBuffer = 64

type logKey struct {
	user uuid.UUID
	day  string
}

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	groups   map[uuid.UUID]*domain.Group
	profiles map[uuid.UUID]*domain.Profile
	logs     map[logKey]*domain.Log
	sessions map[string]*domain.Session
	watchers []chan domain.LogChange

	now func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		groups:   make(map[uuid.UUID]*domain.Group),
		profiles: make(map[uuid.UUID]*domain.Profile),
		logs:     make(map[logKey]*domain.Log),
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// Ensure interfaces are met.
var (
	_ domain.GroupRepository   = (*DB)(nil)
	_ domain.ProfileRepository = (*DB)(nil)
	_ domain.LogRepository     = (*DB)(nil)
	_ domain.StreakCalculator  = (*DB)(nil)
	_ domain.SessionRepository = (*DB)(nil)
	_ domain.LogChangeFeed     = (*DB)(nil)
)

// --- GroupRepository ---

// CreateGroup stores a group under code.
func (db *DB) CreateGroup(ctx context.Context, name, code string, target *int) (*domain.Group, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, g := range db.groups {
		if g.Code == code {
			return nil, domain.ErrGroupCodeTaken
		}
	}
	g := &domain.Group{
		ID:          uuid.New(),
		Code:        code,
		Name:        name,
		GroupTarget: copyInt(target),
		CreatedAt:   db.now().UTC(),
	}
	db.groups[g.ID] = g
	ret := *g
	return &ret, nil
}

// GroupByCode returns the group with the given invite code, or nil.
func (db *DB) GroupByCode(ctx context.Context, code string) (*domain.Group, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, g := range db.groups {
		if g.Code == code {
			ret := *g
			return &ret, nil
		}
	}
	return nil, nil
}

// GroupByID returns the group with the given id, or nil.
func (db *DB) GroupByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if g, ok := db.groups[id]; ok {
		ret := *g
		return &ret, nil
	}
	return nil, nil
}

// --- ProfileRepository ---

// CreateProfile adds a member to a group.
func (db *DB) CreateProfile(ctx context.Context, p domain.NewProfile) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.groups[p.GroupID]; !ok {
		return nil, domain.ErrGroupNotFound
	}
	for _, existing := range db.profiles {
		if existing.GroupID == p.GroupID && existing.Username == p.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	prof := &domain.Profile{
		ID:          uuid.New(),
		Username:    p.Username,
		AvatarURL:   copyString(p.AvatarURL),
		DailyTarget: p.DailyTarget,
		GroupID:     p.GroupID,
		CreatedAt:   db.now().UTC(),
	}
	db.profiles[prof.ID] = prof
	ret := *prof
	return &ret, nil
}

// ProfileByID returns a profile, or nil.
func (db *DB) ProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if p, ok := db.profiles[id]; ok {
		ret := *p
		return &ret, nil
	}
	return nil, nil
}

// ProfileByUsername returns the group member with username, or nil.
func (db *DB) ProfileByUsername(ctx context.Context, groupID uuid.UUID, username string) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, p := range db.profiles {
		if p.GroupID == groupID && p.Username == username {
			ret := *p
			return &ret, nil
		}
	}
	return nil, nil
}

// ListGroupProfiles returns the group's members ordered by join time.
func (db *DB) ListGroupProfiles(ctx context.Context, groupID uuid.UUID) ([]domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := []domain.Profile{}
	for _, p := range db.profiles {
		if p.GroupID == groupID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

// UpdateDailyTarget sets a profile's daily target.
func (db *DB) UpdateDailyTarget(ctx context.Context, id uuid.UUID, target int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.DailyTarget = target
	return nil
}

// --- LogRepository ---

// LogForDay returns the user's log for day, or nil.
func (db *DB) LogForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.Log, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if l, ok := db.logs[logKey{userID, day}]; ok {
		return copyLog(l), nil
	}
	return nil, nil
}

// UpsertLog writes the row for (userID, day).
func (db *DB) UpsertLog(ctx context.Context, userID uuid.UUID, day string, count int, sets domain.SetsBreakdown) (*domain.Log, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.profiles[userID]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	op := domain.ChangeUpdate
	key := logKey{userID, day}
	l, ok := db.logs[key]
	if !ok {
		op = domain.ChangeInsert
		l = &domain.Log{ID: uuid.New(), UserID: userID, Date: day, CreatedAt: db.now().UTC()}
		db.logs[key] = l
	}
	l.Count = count
	l.SetsBreakdown = append(domain.SetsBreakdown(nil), sets...)
	db.notifyLocked(op, userID, day)
	return copyLog(l), nil
}

// DeleteLog removes the user's log with the given id.
func (db *DB) DeleteLog(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for k, l := range db.logs {
		if l.ID == id && l.UserID == userID {
			delete(db.logs, k)
			db.notifyLocked(domain.ChangeDelete, userID, l.Date)
			return nil
		}
	}
	return nil
}

// ListLogs returns the user's logs in ascending date order.
func (db *DB) ListLogs(ctx context.Context, userID uuid.UUID, from, to string) ([]domain.Log, error) {
	return db.ListLogsForUsers(ctx, []uuid.UUID{userID}, from, to)
}

// ListRecentLogs returns up to limit logs, newest first.
func (db *DB) ListRecentLogs(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Log, error) {
	all, err := db.ListLogs(ctx, userID, "", "")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Log, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// ListLogsForUsers returns logs of all given users in ascending date order.
func (db *DB) ListLogsForUsers(ctx context.Context, userIDs []uuid.UUID, from, to string) ([]domain.Log, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	period := domain.Period{Start: from, End: to}

	out := []domain.Log{}
	for _, l := range db.logs {
		if wanted[l.UserID] && period.Contains(l.Date) {
			out = append(out, *copyLog(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out, nil
}

// CalculateStreak evaluates the streak ending at asOf from the stored history.
func (db *DB) CalculateStreak(ctx context.Context, userID uuid.UUID, targetReps int, asOf string) (int, error) {
	day, err := domain.ParseDateKey(asOf)
	if err != nil {
		return 0, err
	}
	logs, err := db.ListLogs(ctx, userID, "", asOf)
	if err != nil {
		return 0, err
	}
	return domain.ComputeStreak(domain.HistoryFromLogs(logs), targetReps, day), nil
}

// --- SessionRepository ---

// CreateSession stores a session keyed by the token hash.
func (db *DB) CreateSession(ctx context.Context, profileID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.sessions[tokenHash] = &domain.Session{
		TokenHash: tokenHash,
		ProfileID: profileID,
		ExpiresAt: expiresAt,
		CreatedAt: db.now().UTC(),
	}
	return nil
}

// SessionByTokenHash returns the session, or nil. Expiry is left to the caller.
func (db *DB) SessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if s, ok := db.sessions[tokenHash]; ok {
		ret := *s
		return &ret, nil
	}
	return nil, nil
}

// DeleteSession removes a session.
func (db *DB) DeleteSession(ctx context.Context, tokenHash string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.sessions, tokenHash)
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now.
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int64
	for k, s := range db.sessions {
		if now.After(s.ExpiresAt) {
			delete(db.sessions, k)
			n++
		}
	}
	return n, nil
}

// --- LogChangeFeed ---

// SubscribeLogChanges delivers every log mutation until ctx ends.
func (db *DB) SubscribeLogChanges(ctx context.Context) (<-chan domain.LogChange, error) {
	ch := make(chan domain.LogChange, feedBuffer)

	db.mu.Lock()
	db.watchers = append(db.watchers, ch)
	db.mu.Unlock()

	go func() {
		<-ctx.Done()
		db.mu.Lock()
		defer db.mu.Unlock()
		for i, w := range db.watchers {
			if w == ch {
				db.watchers = append(db.watchers[:i], db.watchers[i+1:]...)
				close(ch)
				break
			}
		}
	}()
	return ch, nil
}

func (db *DB) notifyLocked(op domain.ChangeOp, userID uuid.UUID, day string) {
	if len(db.watchers) == 0 {
		return
	}
	c := domain.LogChange{Op: op, UserID: userID, Date: day}
	if p, ok := db.profiles[userID]; ok {
		c.GroupID = p.GroupID
	}
	for _, w := range db.watchers {
		select {
		case w <- c:
		default:
		}
	}
}

func copyLog(l *domain.Log) *domain.Log {
	ret := *l
	ret.SetsBreakdown = append(domain.SetsBreakdown(nil), l.SetsBreakdown...)
	return &ret
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
