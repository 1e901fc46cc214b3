package app

import (
	"context"
	"sort"
	"time"

	"pushups/internal/domain"

	"github.com/google/uuid"
)

// Leaderboard sort orders.
const (
	SortByTotal  = "total"
	SortByStreak = "streak"
)

// LeaderboardEntry is one member's standing in the group.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"userId"`
	Username    string    `json:"username"`
	AvatarURL   *string   `json:"avatarUrl"`
	DailyTarget int       `json:"dailyTarget"`
	Total       int       `json:"total"`
	Streak      int       `json:"streak"`
	IsYou       bool      `json:"isYou"`
}

// ProgressMember names a series in the progress chart.
type ProgressMember struct {
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatarUrl"`
}

// Progress is the cumulative group chart.
type Progress struct {
	Members []ProgressMember     `json:"members"`
	Points  []domain.SeriesPoint `json:"points"`
}

// GroupStats summarizes the group's collective progress for the challenge year.
type GroupStats struct {
	Total            int  `json:"total"`
	Target           *int `json:"target"`
	MemberCount      int  `json:"memberCount"`
	Percentage       int  `json:"percentage"`
	DaysLogged       int  `json:"daysLogged"`
	ProjectedYearEnd int  `json:"projectedYearEnd"`
	ChallengeYear    int  `json:"challengeYear"`
}

// LeaderboardService computes group rankings and charts.
type LeaderboardService struct {
	profiles domain.ProfileRepository
	logs     domain.LogRepository
	year     int
	now      func() time.Time
}

// NewLeaderboardService creates a LeaderboardService for the given challenge year.
func NewLeaderboardService(profiles domain.ProfileRepository, logs domain.LogRepository, year int) *LeaderboardService {
	return &LeaderboardService{profiles: profiles, logs: logs, year: year, now: time.Now}
}

// WithClock replaces the time source.
func (s *LeaderboardService) WithClock(now func() time.Time) *LeaderboardService {
	s.now = now
	return s
}

func (s *LeaderboardService) members(ctx context.Context, groupID uuid.UUID) ([]domain.Profile, []uuid.UUID, error) {
	members, err := s.profiles.ListGroupProfiles(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return members, ids, nil
}

// Leaderboard ranks the caller's group by period total or by current streak.
func (s *LeaderboardService) Leaderboard(ctx context.Context, id *domain.Identity, sortBy string) ([]LeaderboardEntry, error) {
	if sortBy == "" {
		sortBy = SortByTotal
	}
	if sortBy != SortByTotal && sortBy != SortByStreak {
		return nil, domain.Invalid("sort", "must be %q or %q", SortByTotal, SortByStreak)
	}

	members, ids, err := s.members(ctx, id.Group.ID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []LeaderboardEntry{}, nil
	}

	// Streaks need history outside the challenge year, so fetch everything.
	records, err := s.logs.ListLogsForUsers(ctx, ids, "", "")
	if err != nil {
		return nil, err
	}
	totals := domain.AggregateTotals(records, domain.YearPeriod(s.year))

	byUser := make(map[uuid.UUID][]domain.Log, len(members))
	for _, r := range records {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	today := s.now()
	entries := make([]LeaderboardEntry, len(members))
	for i, m := range members {
		entries[i] = LeaderboardEntry{
			UserID:      m.ID,
			Username:    m.Username,
			AvatarURL:   m.AvatarURL,
			DailyTarget: m.DailyTarget,
			Total:       totals[m.ID],
			Streak:      domain.ComputeStreak(domain.HistoryFromLogs(byUser[m.ID]), m.DailyTarget, today),
			IsYou:       m.ID == id.Profile.ID,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if sortBy == SortByStreak {
			if a.Streak != b.Streak {
				return a.Streak > b.Streak
			}
		} else if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Username < b.Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Progress returns the downsampled cumulative chart of the caller's group.
func (s *LeaderboardService) Progress(ctx context.Context, id *domain.Identity) (*Progress, error) {
	members, ids, err := s.members(ctx, id.Group.ID)
	if err != nil {
		return nil, err
	}
	out := &Progress{
		Members: make([]ProgressMember, len(members)),
		Points:  []domain.SeriesPoint{},
	}
	for i, m := range members {
		out.Members[i] = ProgressMember{UserID: m.ID, Username: m.Username, AvatarURL: m.AvatarURL}
	}
	if len(ids) == 0 {
		return out, nil
	}

	p := domain.YearPeriod(s.year)
	records, err := s.logs.ListLogsForUsers(ctx, ids, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	if points := domain.BuildCumulativeSeries(records, ids); len(points) > 0 {
		out.Points = domain.Downsample(points, domain.MaxChartPoints)
	}
	return out, nil
}

// GroupStats returns the group's collective total against its target.
func (s *LeaderboardService) GroupStats(ctx context.Context, id *domain.Identity) (*GroupStats, error) {
	members, ids, err := s.members(ctx, id.Group.ID)
	if err != nil {
		return nil, err
	}
	stats := &GroupStats{
		Target:        id.Group.GroupTarget,
		MemberCount:   len(members),
		ChallengeYear: s.year,
	}
	if len(ids) == 0 {
		return stats, nil
	}

	p := domain.YearPeriod(s.year)
	records, err := s.logs.ListLogsForUsers(ctx, ids, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	days := make(map[string]struct{})
	for _, r := range records {
		stats.Total += r.Count
		days[r.Date] = struct{}{}
	}
	stats.DaysLogged = len(days)
	stats.ProjectedYearEnd = domain.ProjectedYearEnd(stats.Total, stats.DaysLogged, domain.DaysInYear)
	if stats.Target != nil {
		stats.Percentage = domain.Percentage(stats.Total, *stats.Target)
	}
	return stats, nil
}
