package shift

import "errors"

var (
	ErrShiftNotFound   = errors.New("work shift not found")
	ErrShiftNameExists = errors.New("work shift with this name already exists")
	ErrShiftInvalid    = errors.New("work shift start and end must differ")
)
