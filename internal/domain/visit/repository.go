package visit

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
)

type VisitRepository interface {
	Create(ctx context.Context, v VisitReport) (VisitReport, error)
	GetByID(ctx context.Context, id string) (VisitReport, error)
	List(ctx context.Context, filter VisitFilter) ([]VisitReport, int64, error)
	Decide(ctx context.Context, id string, d approval.Decision) (VisitReport, error)
}
