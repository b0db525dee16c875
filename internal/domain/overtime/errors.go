package overtime

import "errors"

var (
	ErrOvertimeNotFound = errors.New("overtime request not found")
	ErrInvalidDuration  = errors.New("overtime duration must be more than 0 and at most 8 hours")
	ErrDuplicateDate    = errors.New("an overtime request for this date already exists")
)
