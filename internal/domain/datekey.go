package domain

import (
	"fmt"
	"time"
)

// DateLayout is the canonical YYYY-MM-DD day key layout.
const DateLayout = "2006-01-02"

// DateKey formats t using its own calendar fields, with no zone conversion,
// so a late-evening local time never shifts to the next UTC day.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// TodayKey returns the current local day key.
func TodayKey() string {
	return DateKey(time.Now().In(time.Local))
}

// ParseDateKey parses a day key as local midnight.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// AddDays steps a day key by n calendar days.
func AddDays(key string, n int) (string, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", key)
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// Period is an inclusive range of day keys. An empty bound is open.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// YearPeriod covers January 1 through December 31 of year.
func YearPeriod(year int) Period {
	return Period{
		Start: fmt.Sprintf("%04d-01-01", year),
		End:   fmt.Sprintf("%04d-12-31", year),
	}
}

// MonthPeriod covers the first through the last day of the given month.
func MonthPeriod(year int, month time.Month) Period {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Period{Start: DateKey(first), End: DateKey(last)}
}

// Contains reports whether day falls inside p. Keys compare lexically.
func (p Period) Contains(day string) bool {
	return (p.Start == "" || day >= p.Start) && (p.End == "" || day <= p.End)
}

// DayLabel renders a day key as a short chart label such as "Jan 2".
func DayLabel(key string) string {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2")
}
