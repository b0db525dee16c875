package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	Create(ctx context.Context, e Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	// ListActiveIDs returns active employees hired on or before the date.
	ListActiveIDs(ctx context.Context, onOrBefore time.Time) ([]string, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	SetBypassLocation(ctx context.Context, id string, bypass bool) error
	SetActive(ctx context.Context, id string, active bool) error
	// AddUsedLeaveDays increments the cumulative used-leave counter.
	AddUsedLeaveDays(ctx context.Context, id string, days int) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
