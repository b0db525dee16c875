package shift

import "time"

// WorkShift is a named working-hours window. Start and end are "HH:MM".
type WorkShift struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
