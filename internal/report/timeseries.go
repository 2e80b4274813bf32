package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AngelCh415/signups-report/internal/models"
	"github.com/AngelCh415/signups-report/internal/store"
)

// Signups counts eligible organizations per UTC day over the trailing
// window ending at now. Days without sign-ups are absent, not zero.
func Signups(ctx context.Context, st store.Store, now time.Time, windowDays int) (models.SignupSeries, error) {
	since := now.UTC().Add(-time.Duration(windowDays) * day)
	days, err := st.DailySignups(ctx, since)
	if err != nil {
		return models.SignupSeries{}, err
	}

	series := models.SignupSeries{WindowDays: windowDays, Points: dailyPoints(days)}
	for _, p := range series.Points {
		series.Total += p.Count
	}
	if len(series.Points) == 0 {
		series.Empty = true
		series.Message = "No signups in the last " + windowLabel(windowDays) + "."
	}
	return series, nil
}

// windowLabel names the window in months when it is a whole number of
// 30-day months, otherwise in days.
func windowLabel(days int) string {
	switch {
	case days == 30:
		return "month"
	case days > 0 && days%30 == 0:
		return fmt.Sprintf("%d months", days/30)
	case days == 1:
		return "day"
	}
	return fmt.Sprintf("%d days", days)
}

// dailyPoints merges counts by UTC day and orders them ascending.
func dailyPoints(days []models.DayCount) []models.DailySignup {
	byDay := make(map[string]int64, len(days))
	for _, d := range days {
		if d.Count <= 0 {
			continue
		}
		byDay[d.Date.UTC().Format("2006-01-02")] += d.Count
	}
	out := make([]models.DailySignup, 0, len(byDay))
	for k, n := range byDay {
		out = append(out, models.DailySignup{Date: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
