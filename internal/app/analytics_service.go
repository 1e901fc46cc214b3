package app

import (
	"context"

	"pushups/internal/domain"
)

// ChartBar is one day of the personal analytics chart.
type ChartBar struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary is the acting user's yearly analytics.
type Summary struct {
	Total              int        `json:"total"`
	MaxDay             int        `json:"maxDay"`
	MaxSet             int        `json:"maxSet"`
	DaysLogged         int        `json:"daysLogged"`
	YearGoal           int        `json:"yearGoal"`
	YearGoalPercentage int        `json:"yearGoalPercentage"`
	ProjectedYearEnd   int        `json:"projectedYearEnd"`
	DailyAverageNeeded int        `json:"dailyAverageNeeded"`
	Chart              []ChartBar `json:"chart"`
}

// AnalyticsService computes personal statistics for the challenge year.
type AnalyticsService struct {
	logs domain.LogRepository
	year int
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(logs domain.LogRepository, year int) *AnalyticsService {
	return &AnalyticsService{logs: logs, year: year}
}

// Summary aggregates the caller's logs for the challenge year.
func (s *AnalyticsService) Summary(ctx context.Context, id *domain.Identity) (*Summary, error) {
	p := domain.YearPeriod(s.year)
	logs, err := s.logs.ListLogs(ctx, id.Profile.ID, p.Start, p.End)
	if err != nil {
		return nil, err
	}

	out := &Summary{
		YearGoal: domain.YearGoal(id.Profile.DailyTarget),
		Chart:    []ChartBar{},
	}
	for _, l := range logs {
		out.Total += l.Count
		if l.Count > out.MaxDay {
			out.MaxDay = l.Count
		}
		if m := l.SetsBreakdown.Max(); m > out.MaxSet {
			out.MaxSet = m
		}
		if l.Count > 0 {
			out.DaysLogged++
		}
	}

	out.YearGoalPercentage = domain.Percentage(out.Total, out.YearGoal)
	out.ProjectedYearEnd = domain.ProjectedYearEnd(out.Total, out.DaysLogged, domain.DaysInYear)
	out.DailyAverageNeeded = domain.DailyAverageNeeded(out.YearGoal, out.Total, out.DaysLogged, domain.DaysInYear)

	recent := logs
	if len(recent) > domain.MaxChartPoints {
		recent = recent[len(recent)-domain.MaxChartPoints:]
	}
	for _, l := range recent {
		out.Chart = append(out.Chart, ChartBar{Date: l.Date, Label: domain.DayLabel(l.Date), Count: l.Count})
	}
	return out, nil
}
