package model

import "time"

// TimestampLayout is the text form of every created_date column.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp formats t the way created_date columns store it.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Base contains the surrogate key shared by all models
type Base struct {
	ID int64 `json:"id" db:"id"`
}
