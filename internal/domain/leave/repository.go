package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
)

type LeaveRepository interface {
	Create(ctx context.Context, l LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, int64, error)
	// HasOverlap reports a pending or approved request intersecting [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	// Decide moves a pending request to d.Status. Returns
	// approval.ErrAlreadyProcessed when the request is no longer pending.
	Decide(ctx context.Context, id string, d approval.Decision) (LeaveRequest, error)
	// ApprovedEmployeeIDsOn lists employees with approved leave covering date.
	ApprovedEmployeeIDsOn(ctx context.Context, date time.Time) ([]string, error)
}
