package location

import "context"

type LocationRepository interface {
	Create(ctx context.Context, l PermittedLocation) (PermittedLocation, error)
	GetByID(ctx context.Context, id string) (PermittedLocation, error)
	List(ctx context.Context) ([]PermittedLocation, error)
	Update(ctx context.Context, l PermittedLocation) (PermittedLocation, error)
	Delete(ctx context.Context, id string) error
	// ListByEmployee returns the locations assigned to an employee.
	ListByEmployee(ctx context.Context, employeeID string) ([]PermittedLocation, error)
	// ReplaceEmployeeLocations sets the exact assigned set for an employee.
	ReplaceEmployeeLocations(ctx context.Context, employeeID string, locationIDs []string) error
}
