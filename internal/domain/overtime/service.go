package overtime

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
)

type OvertimeService interface {
	Create(ctx context.Context, req CreateOvertimeRequest) (OvertimeResponse, error)
	Get(ctx context.Context, id string) (OvertimeResponse, error)
	ListMine(ctx context.Context, filter OvertimeFilter) (ListOvertimeResponse, error)
	List(ctx context.Context, filter OvertimeFilter) (ListOvertimeResponse, error)
	Approve(ctx context.Context, id string) (OvertimeResponse, error)
	Reject(ctx context.Context, id string, req approval.RejectRequest) (OvertimeResponse, error)
}
