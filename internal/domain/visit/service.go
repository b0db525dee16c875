package visit

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
)

type VisitService interface {
	Create(ctx context.Context, req CreateVisitRequest) (VisitResponse, error)
	Get(ctx context.Context, id string) (VisitResponse, error)
	ListMine(ctx context.Context, filter VisitFilter) (ListVisitResponse, error)
	List(ctx context.Context, filter VisitFilter) (ListVisitResponse, error)
	Approve(ctx context.Context, id string) (VisitResponse, error)
	Reject(ctx context.Context, id string, req approval.RejectRequest) (VisitResponse, error)
}
