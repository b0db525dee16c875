package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
)

type LeaveService interface {
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)
	Get(ctx context.Context, id string) (LeaveResponse, error)
	ListMine(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
	List(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
	Approve(ctx context.Context, id string) (LeaveResponse, error)
	Reject(ctx context.Context, id string, req approval.RejectRequest) (LeaveResponse, error)
}
