package overtime

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/shopspring/decimal"
)

type OvertimeRepository interface {
	Create(ctx context.Context, o OvertimeRequest) (OvertimeRequest, error)
	GetByID(ctx context.Context, id string) (OvertimeRequest, error)
	List(ctx context.Context, filter OvertimeFilter) ([]OvertimeRequest, int64, error)
	Decide(ctx context.Context, id string, d approval.Decision) (OvertimeRequest, error)
	// ApprovedHours sums approved overtime for an employee in [from, to].
	ApprovedHours(ctx context.Context, employeeID string, from, to time.Time) (decimal.Decimal, error)
}
