package employee

import "context"

type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetMine(ctx context.Context) (EmployeeResponse, error)
	List(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)
	Update(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)
	AssignLocations(ctx context.Context, req AssignLocationsRequest) (EmployeeResponse, error)
	SetBypass(ctx context.Context, req SetBypassRequest) (EmployeeResponse, error)
	Deactivate(ctx context.Context, id string) error

	// AttendanceProfile loads the bypass flag and assigned locations fresh.
	AttendanceProfile(ctx context.Context, employeeID string) (AttendanceProfile, error)
}
