package app

import (
	"context"
	"fmt"
	"time"

	"pushups/internal/domain"

	"github.com/google/uuid"
)

const (
	maxRepsPerAdd = 10000
	historyLimit  = 30
)

// TodayStatus is the acting user's progress for the current day.
type TodayStatus struct {
	Date       string `json:"date"`
	Count      int    `json:"count"`
	Target     int    `json:"target"`
	Percentage int    `json:"percentage"`
	Streak     int    `json:"streak"`
}

// AddResult is the outcome of AddReps. On failure Count holds the prior total.
type AddResult struct {
	TodayStatus
	Added          int  `json:"added"`
	StreakExtended bool `json:"streakExtended"`
}

// SaveResult is the outcome of SaveDay. Log is nil when the day was cleared.
type SaveResult struct {
	Log     *domain.Log `json:"log"`
	Deleted bool        `json:"deleted"`
}

// LogService encapsulates daily logging and history editing.
type LogService struct {
	logs     domain.LogRepository
	streaks  domain.StreakCalculator
	profiles domain.ProfileRepository
	now      func() time.Time
}

// NewLogService creates a LogService.
func NewLogService(logs domain.LogRepository, streaks domain.StreakCalculator, profiles domain.ProfileRepository) *LogService {
	return &LogService{logs: logs, streaks: streaks, profiles: profiles, now: time.Now}
}

// WithClock replaces the time source.
func (s *LogService) WithClock(now func() time.Time) *LogService {
	s.now = now
	return s
}

func (s *LogService) today() string {
	return domain.DateKey(s.now())
}

// Today returns the count, percentage and streak for the current day.
func (s *LogService) Today(ctx context.Context, id *domain.Identity) (*TodayStatus, error) {
	day := s.today()
	count := 0
	l, err := s.logs.LogForDay(ctx, id.Profile.ID, day)
	if err != nil {
		return nil, err
	}
	if l != nil {
		count = l.Count
	}
	return s.status(ctx, id, day, count)
}

func (s *LogService) status(ctx context.Context, id *domain.Identity, day string, count int) (*TodayStatus, error) {
	target := id.Profile.DailyTarget
	streak, err := s.streaks.CalculateStreak(ctx, id.Profile.ID, target, day)
	if err != nil {
		return nil, fmt.Errorf("calculate streak: %w", err)
	}
	return &TodayStatus{
		Date:       day,
		Count:      count,
		Target:     target,
		Percentage: domain.Percentage(count, target),
		Streak:     streak,
	}, nil
}

// AddReps adds delta repetitions to today's log. New sets are appended to the
// stored breakdown. When the write fails the result carries the prior total.
func (s *LogService) AddReps(ctx context.Context, id *domain.Identity, delta int, sets []int) (*AddResult, error) {
	if delta < 1 || delta > maxRepsPerAdd {
		return nil, domain.Invalid("count", "must be between 1 and %d", maxRepsPerAdd)
	}
	added, err := domain.NewSetsBreakdown(sets)
	if err != nil {
		return nil, err
	}

	day := s.today()
	target := id.Profile.DailyTarget

	current, err := s.logs.LogForDay(ctx, id.Profile.ID, day)
	if err != nil {
		return nil, err
	}
	prior := 0
	var breakdown domain.SetsBreakdown
	if current != nil {
		prior = current.Count
		breakdown = append(breakdown, current.SetsBreakdown...)
	}
	breakdown = append(breakdown, added...)

	saved, err := s.logs.UpsertLog(ctx, id.Profile.ID, day, prior+delta, breakdown)
	if err != nil {
		return &AddResult{TodayStatus: TodayStatus{
			Date:       day,
			Count:      prior,
			Target:     target,
			Percentage: domain.Percentage(prior, target),
		}}, err
	}

	st, err := s.status(ctx, id, day, saved.Count)
	if err != nil {
		return nil, err
	}
	return &AddResult{
		TodayStatus:    *st,
		Added:          delta,
		StreakExtended: saved.Count >= target && prior < target,
	}, nil
}

// Month returns the user's logs in the given month, newest first.
func (s *LogService) Month(ctx context.Context, id *domain.Identity, year int, month time.Month) ([]domain.Log, error) {
	if month < time.January || month > time.December {
		return nil, domain.Invalid("month", "must be between 1 and 12")
	}
	p := domain.MonthPeriod(year, month)
	logs, err := s.logs.ListLogs(ctx, id.Profile.ID, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// SaveDay overwrites a past or current day. A nil count means the sum of sets.
// A zero total clears the day.
func (s *LogService) SaveDay(ctx context.Context, id *domain.Identity, day string, count *int, sets []int) (*SaveResult, error) {
	if _, err := domain.ParseDateKey(day); err != nil {
		return nil, domain.Invalid("date", "%s", err.Error())
	}
	if day > s.today() {
		return nil, domain.Invalid("date", "cannot log a future day")
	}
	breakdown, err := domain.NewSetsBreakdown(sets)
	if err != nil {
		return nil, err
	}

	total := breakdown.Sum()
	if count != nil {
		total = *count
	}
	if total < 0 {
		return nil, domain.Invalid("count", "must not be negative")
	}

	if total == 0 {
		existing, err := s.logs.LogForDay(ctx, id.Profile.ID, day)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := s.logs.DeleteLog(ctx, id.Profile.ID, existing.ID); err != nil {
				return nil, err
			}
		}
		return &SaveResult{Deleted: true}, nil
	}

	saved, err := s.logs.UpsertLog(ctx, id.Profile.ID, day, total, breakdown)
	if err != nil {
		return nil, err
	}
	return &SaveResult{Log: saved}, nil
}

// DeleteDay removes the log for day.
func (s *LogService) DeleteDay(ctx context.Context, id *domain.Identity, day string) error {
	if _, err := domain.ParseDateKey(day); err != nil {
		return domain.Invalid("date", "%s", err.Error())
	}
	existing, err := s.logs.LogForDay(ctx, id.Profile.ID, day)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrLogNotFound
	}
	return s.logs.DeleteLog(ctx, id.Profile.ID, existing.ID)
}

// MemberHistory returns the most recent logs of another member of the caller's group.
func (s *LogService) MemberHistory(ctx context.Context, id *domain.Identity, memberID uuid.UUID) ([]domain.Log, error) {
	member, err := s.profiles.ProfileByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.GroupID != id.Group.ID {
		return nil, domain.ErrProfileNotFound
	}
	return s.logs.ListRecentLogs(ctx, memberID, historyLimit)
}
