package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	UserID           string
	EmployeeCode     string
	FullName         string
	Email            string
	Role             user.Role
	Position         *string
	PhoneNumber      *string
	ShiftID          *string
	BypassLocation   bool
	BaseSalary       decimal.Decimal
	AnnualLeaveQuota int
	UsedLeaveDays    int
	HireDate         time.Time
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RemainingLeave is never negative.
func (e Employee) RemainingLeave() int {
	return max(0, e.AnnualLeaveQuota-e.UsedLeaveDays)
}

// AttendanceProfile is what the attendance recorder needs to decide location
// policy for one employee.
type AttendanceProfile struct {
	EmployeeID     string
	BypassLocation bool
	Locations      []location.PermittedLocation
}
