package domain

import "math"

// DaysInYear is the year length used by projections.
const DaysInYear = 365

// Percentage returns current/target as a whole percent in [0, 100].
// A non-positive target yields 0.
func Percentage(current, target int) int {
	if target <= 0 {
		return 0
	}
	p := int(math.Round(float64(current) / float64(target) * 100))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// ProjectedYearEnd linearly extrapolates the observed daily average over daysInYear.
func ProjectedYearEnd(totalSoFar, daysLogged, daysInYear int) int {
	if daysLogged <= 0 {
		return 0
	}
	return int(math.Round(float64(totalSoFar) / float64(daysLogged) * float64(daysInYear)))
}

// DailyAverageNeeded is the per-day amount still required to reach targetTotal
// in the remaining days, rounded up. It is 0 once the target is met or no days remain.
func DailyAverageNeeded(targetTotal, totalSoFar, daysLogged, daysInYear int) int {
	daysLeft := daysInYear - daysLogged
	remaining := targetTotal - totalSoFar
	if daysLeft <= 0 || remaining <= 0 {
		return 0
	}
	return (remaining + daysLeft - 1) / daysLeft
}

// YearGoal is the personal yearly total implied by a daily target.
func YearGoal(dailyTarget int) int {
	return dailyTarget * DaysInYear
}
