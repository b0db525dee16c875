package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
)

type LeaveType string

const (
	LeaveTypeAnnual     LeaveType = "annual"
	LeaveTypeSick       LeaveType = "sick"
	LeaveTypePermission LeaveType = "permission"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypePermission:
		return true
	}
	return false
}

type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  LeaveType
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     approval.Status
	DecidedBy  *string
	DecidedAt  *time.Time
	RejectNote *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Join
	EmployeeName *string
}

// DayCount is the inclusive number of calendar days covered.
func (l LeaveRequest) DayCount() int {
	return DayCount(l.StartDate, l.EndDate)
}

// DayCount returns end - start + 1 in whole calendar days.
func DayCount(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// Covers reports whether date falls within the request.
func (l LeaveRequest) Covers(date time.Time) bool {
	d := date.Format(time.DateOnly)
	return d >= l.StartDate.Format(time.DateOnly) && d <= l.EndDate.Format(time.DateOnly)
}
