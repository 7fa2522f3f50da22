package model

import "time"

// Stats is the usage summary shown on the statistics screen.
type Stats struct {
	TotalPatients int64         `json:"total_patients"`
	TotalVisits   int64         `json:"total_visits"`
	TodayVisits   int64         `json:"today_visits"`
	MonthVisits   int64         `json:"month_visits"`
	Monthly       []MonthlyStat `json:"monthly"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// MonthlyStat is keyed by patient registration month (mm/yyyy). Visits
// counts every visit whose visit month equals that registration month.
type MonthlyStat struct {
	MonthYear   string `db:"month_year" json:"month_year"`
	NewPatients int64  `db:"new_patients" json:"new_patients"`
	Visits      int64  `db:"visits" json:"visits"`
	Total       int64  `db:"-" json:"total"`
}
