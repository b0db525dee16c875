package payroll

import (
	"context"
	"time"
)

type PayrollRepository interface {
	AddComponent(ctx context.Context, c EmployeeComponent) (EmployeeComponent, error)
	ListComponents(ctx context.Context, employeeID string) ([]EmployeeComponent, error)
	DeleteComponent(ctx context.Context, employeeID, id string) error

	// UpsertDraft inserts or replaces the slip for (employee, period) while it
	// is still a draft. Returns ErrSlipAlreadyPublished otherwise.
	UpsertDraft(ctx context.Context, s Slip) (Slip, error)
	GetByID(ctx context.Context, id string) (Slip, error)
	List(ctx context.Context, filter SlipFilter) ([]Slip, int64, error)
	Publish(ctx context.Context, id string, at time.Time) (Slip, error)

	// SummarizeAttendance counts attendance statuses for [from, to].
	SummarizeAttendance(ctx context.Context, employeeID string, from, to time.Time) (AttendanceSummary, error)
}
