package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrInsufficientQuota    = errors.New("insufficient annual leave quota")
	ErrOverlappingLeave     = errors.New("leave request overlaps an existing request")
)
