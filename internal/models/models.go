package models

import "time"

// Records read from the document store. Ids are hex object ids; an empty
// string means the reference is absent.

type Organization struct {
	ID               string
	CreatedAt        time.Time
	Name             string
	UTMTag           string
	InstallationUser string
	ToBeSynced       bool
}

type User struct {
	ID            string
	Name          string
	Login         string
	Email         string
	Organizations []string
}

type UserEvent struct {
	ID        string
	User      string
	CreatedAt time.Time
}

type Alert struct {
	ID  string
	Org string
}

type AlertConfig struct {
	ID       string
	Org      string
	IsActive bool
}

type Installation struct {
	ID     string
	Source string
}

// Activity summarizes the events of one user.
type Activity struct {
	Count int64
	Last  time.Time
}

type DayCount struct {
	Date  time.Time
	Count int64
}

// Derived, recomputed on every refresh.

type ReportRow struct {
	Company          string `json:"company"`
	AdminName        string `json:"admin_name"`
	Login            string `json:"login"`
	Email            string `json:"email"`
	DevCount         int64  `json:"dev_count"`
	SignUpDate       string `json:"sign_up_date"`
	FTDaysRemaining  string `json:"ft_days_remaining"`
	Activities       int64  `json:"activities"`
	LastActivityDate string `json:"last_activity_date"`
	GoalsLive        int64  `json:"goals_live"`
	AlertsGenerated  int64  `json:"alerts_generated"`
	UserID           string `json:"user_id"`
}

type CompanyTable struct {
	Rows    []ReportRow `json:"rows"`
	Empty   bool        `json:"empty"`
	Message string      `json:"message,omitempty"`
}

type DailySignup struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type SignupSeries struct {
	WindowDays int           `json:"window_days"`
	Points     []DailySignup `json:"points"`
	Total      int64         `json:"total"`
	Empty      bool          `json:"empty"`
	Message    string        `json:"message,omitempty"`
}

type Counter struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value int64  `json:"value"`
	Err   string `json:"error,omitempty"`
}

type Dashboard struct {
	GeneratedAt         time.Time    `json:"generated_at"`
	RefreshAfterSeconds int          `json:"refresh_after_seconds"`
	Counters            []Counter    `json:"counters"`
	Signups             SignupSeries `json:"signups"`
	Companies           CompanyTable `json:"companies"`
}
