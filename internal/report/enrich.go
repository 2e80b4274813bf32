package report

import (
	"strconv"
	"time"

	"github.com/AngelCh415/signups-report/internal/models"
)

const (
	NA         = "NA"
	TrialEnded = "Trial Ended"
	NoUser     = "-"

	dateLayout = "02-01-2006"
	day        = 24 * time.Hour

	LegacyTrial = 30 * day
	Trial       = 14 * day
)

// TrialCutover is when the free trial went from 30 to 14 days.
var TrialCutover = time.Date(2023, time.May, 15, 0, 0, 0, 0, time.UTC)

// ActivityLookup resolves the event summary of an installing user.
type ActivityLookup interface {
	Activity(userID string) (models.Activity, bool)
}

// Activities is an ActivityLookup over a prefetched map.
type Activities map[string]models.Activity

func (a Activities) Activity(userID string) (models.Activity, bool) {
	act, ok := a[userID]
	return act, ok && act.Count > 0
}

func TrialLength(created time.Time) time.Duration {
	if created.Before(TrialCutover) {
		return LegacyTrial
	}
	return Trial
}

// DaysRemaining is the whole number of days left in the trial, floored.
func DaysRemaining(created, now time.Time) int {
	left := created.UTC().Add(TrialLength(created)).Sub(now.UTC())
	n := int(left / day)
	if left%day < 0 {
		n--
	}
	return n
}

func TrialStatus(created, now time.Time) string {
	n := DaysRemaining(created, now)
	if n <= 0 {
		return TrialEnded
	}
	return strconv.Itoa(n)
}

// Enrich builds the report row for one organization. It never fails;
// missing data renders as sentinels and zero counts.
func Enrich(org models.Organization, idx *Index, now time.Time, acts ActivityLookup) models.ReportRow {
	row := models.ReportRow{
		Company:          orNA(org.Name),
		AdminName:        NA,
		Login:            NA,
		Email:            NA,
		DevCount:         idx.DevCount(org.ID),
		SignUpDate:       NA,
		FTDaysRemaining:  TrialStatus(org.CreatedAt, now),
		LastActivityDate: NA,
		GoalsLive:        idx.GoalsLive(org.ID),
		AlertsGenerated:  idx.AlertCount(org.ID),
		UserID:           NoUser,
	}
	if !org.CreatedAt.IsZero() {
		row.SignUpDate = org.CreatedAt.UTC().Format(dateLayout)
	}

	if org.InstallationUser == "" {
		return row
	}
	row.UserID = org.InstallationUser
	if u, ok := idx.User(org.InstallationUser); ok {
		row.AdminName = orNA(u.Name)
		row.Login = orNA(u.Login)
		row.Email = orNA(u.Email)
	}
	if act, ok := acts.Activity(org.InstallationUser); ok {
		row.Activities = act.Count
		if !act.Last.IsZero() {
			row.LastActivityDate = act.Last.UTC().Format(dateLayout)
		}
	}
	return row
}

func orNA(s string) string {
	if s == "" {
		return NA
	}
	return s
}
