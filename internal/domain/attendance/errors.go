package attendance

import "errors"

var (
	ErrLocationRequired     = errors.New("a location with numeric lat and lng is required")
	ErrNoLocationConfigured = errors.New("no permitted location is configured for this employee")
	ErrOutsideGeofence      = errors.New("current location is outside every permitted location")
	ErrAlreadyCompleted     = errors.New("attendance for today is already completed")
	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrForbiddenEmployee    = errors.New("not allowed to view another employee's attendance")
)
