package planning

import "time"

// Planning overrides a user's default quota for one (user, month, year,
// app) tuple. A unique index on the tuple makes concurrent upserts safe.
type Planning struct {
	ID        string    `json:"-"`
	UserID    string    `json:"-"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	App       string    `json:"app"`
	Hours     int       `json:"hours"`
	UpdatedAt time.Time `json:"-"`
}

// MonthPlan is one row of the twelve-month year view: the effective hours
// for the month and whether they come from an override.
type MonthPlan struct {
	Month    int  `json:"month"`
	Hours    int  `json:"hours"`
	IsCustom bool `json:"isCustom"`
}
