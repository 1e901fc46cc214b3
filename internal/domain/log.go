package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Log is one user's repetition count for one calendar date.
// Count and SetsBreakdown are maintained independently; their sum may differ.
type Log struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"userId"`
	Date          string        `json:"date"`
	Count         int           `json:"count"`
	SetsBreakdown SetsBreakdown `json:"setsBreakdown"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// LogRepository is the port for log persistence. Days are YYYY-MM-DD keys and
// ranges are inclusive; an empty from or to leaves that side open.
type LogRepository interface {
	LogForDay(ctx context.Context, userID uuid.UUID, day string) (*Log, error)
	// UpsertLog writes the row for (userID, day), replacing count and breakdown.
	UpsertLog(ctx context.Context, userID uuid.UUID, day string, count int, sets SetsBreakdown) (*Log, error)
	DeleteLog(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	// ListLogs returns the user's logs in ascending date order.
	ListLogs(ctx context.Context, userID uuid.UUID, from, to string) ([]Log, error)
	// ListRecentLogs returns up to limit logs, newest date first.
	ListRecentLogs(ctx context.Context, userID uuid.UUID, limit int) ([]Log, error)
	// ListLogsForUsers returns logs of all given users in ascending date order.
	ListLogsForUsers(ctx context.Context, userIDs []uuid.UUID, from, to string) ([]Log, error)
}

// StreakCalculator is the store-side streak computation. Implementations must
// agree with ComputeStreak for the same history and asOf day.
type StreakCalculator interface {
	CalculateStreak(ctx context.Context, userID uuid.UUID, targetReps int, asOf string) (int, error)
}

// ChangeOp names the kind of log mutation carried by a LogChange.
type ChangeOp string

// Change operations. ChangeResync is emitted when the feed may have missed
// events and every subscriber should re-fetch.
const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
	ChangeResync ChangeOp = "RESYNC"
)

// LogChange notifies that a log row changed. It is a re-fetch trigger only.
type LogChange struct {
	Op      ChangeOp  `json:"op"`
	UserID  uuid.UUID `json:"userId"`
	GroupID uuid.UUID `json:"groupId"`
	Date    string    `json:"date"`
}

// LogChangeFeed is the publish/subscribe port on the logs table. The returned
// channel is closed when ctx ends or the feed fails permanently.
type LogChangeFeed interface {
	SubscribeLogChanges(ctx context.Context) (<-chan LogChange, error)
}

// HistoryFromLogs maps each log's date to its count.
func HistoryFromLogs(logs []Log) map[string]int {
	h := make(map[string]int, len(logs))
	for _, l := range logs {
		h[l.Date] = l.Count
	}
	return h
}
