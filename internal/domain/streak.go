package domain

import "time"

// ComputeStreak counts consecutive qualifying days ending today, or ending
// yesterday when today has not reached dailyTarget yet. history maps day keys
// to that day's total.
func ComputeStreak(history map[string]int, dailyTarget int, today time.Time) int {
	qualifying := make(map[string]struct{}, len(history))
	for day, count := range history {
		if count >= dailyTarget {
			qualifying[day] = struct{}{}
		}
	}
	if len(qualifying) == 0 {
		return 0
	}

	// Walk in UTC so stepping back never lands on a DST-shortened day twice.
	cursor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if _, ok := qualifying[DateKey(cursor)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := qualifying[DateKey(cursor)]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

// CurrentStreak is ComputeStreak evaluated at the local current day.
func CurrentStreak(history map[string]int, dailyTarget int) int {
	return ComputeStreak(history, dailyTarget, time.Now().In(time.Local))
}
