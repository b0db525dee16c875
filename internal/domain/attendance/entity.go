package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusLeave:
		return true
	}
	return false
}

// LateAfterHour is the last whole hour that still counts as on time.
const LateAfterHour = 9

// StatusAt derives the clock-in status from the local hour of t.
func StatusAt(t time.Time) Status {
	if t.Hour() > LateAfterHour {
		return StatusLate
	}
	return StatusPresent
}

// Record is one employee's attendance for one calendar date.
type Record struct {
	ID               string
	EmployeeID       string
	Date             time.Time
	ClockIn          *time.Time
	ClockOut         *time.Time
	ClockInLocation  *geo.Point
	ClockOutLocation *geo.Point
	ClockInPhoto     *string
	ClockOutPhoto    *string
	Status           Status
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Join
	EmployeeName *string
}

func (r Record) Completed() bool {
	return r.ClockOut != nil
}
