package domain

import (
	"sort"

	"github.com/google/uuid"
)

// MaxChartPoints bounds the number of points returned for charting.
const MaxChartPoints = 30

// SeriesPoint is one date of the cumulative leaderboard chart.
type SeriesPoint struct {
	Date   string            `json:"date"`
	Label  string            `json:"label"`
	Totals map[uuid.UUID]int `json:"totals"`
}

// AggregateTotals sums counts per user for records inside period.
func AggregateTotals(records []Log, period Period) map[uuid.UUID]int {
	totals := make(map[uuid.UUID]int)
	for _, r := range records {
		if period.Contains(r.Date) {
			totals[r.UserID] += r.Count
		}
	}
	return totals
}

// BuildCumulativeSeries emits one point per distinct record date, ascending,
// holding every tracked user's running total up to and including that date.
// Records of users not in userIDs still contribute dates but no totals.
func BuildCumulativeSeries(records []Log, userIDs []uuid.UUID) []SeriesPoint {
	perDay := make(map[string]map[uuid.UUID]int)
	for _, r := range records {
		day, ok := perDay[r.Date]
		if !ok {
			day = make(map[uuid.UUID]int)
			perDay[r.Date] = day
		}
		day[r.UserID] += r.Count
	}

	dates := make([]string, 0, len(perDay))
	for d := range perDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	running := make(map[uuid.UUID]int, len(userIDs))
	for _, id := range userIDs {
		running[id] = 0
	}

	points := make([]SeriesPoint, 0, len(dates))
	for _, d := range dates {
		for id, c := range perDay[d] {
			if _, tracked := running[id]; tracked {
				running[id] += c
			}
		}
		totals := make(map[uuid.UUID]int, len(userIDs))
		for _, id := range userIDs {
			totals[id] = running[id]
		}
		points = append(points, SeriesPoint{Date: d, Label: DayLabel(d), Totals: totals})
	}
	return points
}

// Downsample keeps the first point, the last point, and every step-th point in
// between, preserving order. The step is the smallest that keeps the result
// within limit points. Series of at most limit points are returned unchanged.
func Downsample[T any](points []T, limit int) []T {
	n := len(points)
	if limit <= 0 || n <= limit {
		return points
	}
	if limit == 1 {
		return points[n-1:]
	}
	step := (n - 1 + limit - 2) / (limit - 1)
	out := make([]T, 0, n/step+2)
	for i, p := range points {
		if i == 0 || i == n-1 || i%step == 0 {
			out = append(out, p)
		}
	}
	return out
}
