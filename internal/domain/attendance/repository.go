package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

type AttendanceRepository interface {
	// GetByEmployeeAndDateForUpdate locks the (employee, date) row when it
	// exists. Returns ErrAttendanceNotFound otherwise.
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (Record, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error)
	// CreateClockIn inserts a new record. created is false when a record for
	// (employee, date) already existed; nothing is written in that case.
	CreateClockIn(ctx context.Context, r Record) (rec Record, created bool, err error)
	// CompleteClockOut fills the clock-out fields only while they are empty.
	// Returns ErrAlreadyCompleted when the record was already clocked out.
	CompleteClockOut(ctx context.Context, id string, at time.Time, point *geo.Point, photo *string) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)
	// MarkMissing inserts a status-only record for every employee id without
	// a record on date. Returns the number of rows inserted.
	MarkMissing(ctx context.Context, employeeIDs []string, date time.Time, status Status) (int64, error)
}
