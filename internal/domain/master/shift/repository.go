package shift

import "context"

type ShiftRepository interface {
	Create(ctx context.Context, s WorkShift) (WorkShift, error)
	GetByID(ctx context.Context, id string) (WorkShift, error)
	List(ctx context.Context) ([]WorkShift, error)
	Update(ctx context.Context, s WorkShift) (WorkShift, error)
	Delete(ctx context.Context, id string) error
}
