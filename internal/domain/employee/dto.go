package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type EmployeeResponse struct {
	ID               string                      `json:"id"`
	UserID           string                      `json:"user_id"`
	EmployeeCode     string                      `json:"employee_code"`
	FullName         string                      `json:"full_name"`
	Email            string                      `json:"email"`
	Role             string                      `json:"role"`
	Position         *string                     `json:"position,omitempty"`
	PhoneNumber      *string                     `json:"phone_number,omitempty"`
	ShiftID          *string                     `json:"shift_id,omitempty"`
	BypassLocation   bool                        `json:"bypass_location"`
	BaseSalary       decimal.Decimal             `json:"base_salary"`
	AnnualLeaveQuota int                         `json:"annual_leave_quota"`
	UsedLeaveDays    int                         `json:"used_leave_days"`
	RemainingLeave   int                         `json:"remaining_leave"`
	HireDate         string                      `json:"hire_date"`
	IsActive         bool                        `json:"is_active"`
	Locations        []location.LocationResponse `json:"locations,omitempty"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:               e.ID,
		UserID:           e.UserID,
		EmployeeCode:     e.EmployeeCode,
		FullName:         e.FullName,
		Email:            e.Email,
		Role:             string(e.Role),
		Position:         e.Position,
		PhoneNumber:      e.PhoneNumber,
		ShiftID:          e.ShiftID,
		BypassLocation:   e.BypassLocation,
		BaseSalary:       e.BaseSalary,
		AnnualLeaveQuota: e.AnnualLeaveQuota,
		UsedLeaveDays:    e.UsedLeaveDays,
		RemainingLeave:   e.RemainingLeave(),
		HireDate:         e.HireDate.Format(time.DateOnly),
		IsActive:         e.IsActive,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

type CreateEmployeeRequest struct {
	EmployeeCode     string   `json:"employee_code" validate:"required,max=50"`
	FullName         string   `json:"full_name" validate:"required,max=255"`
	Email            string   `json:"email" validate:"required,email,max=254"`
	Password         string   `json:"password" validate:"required,min=8,max=255"`
	Role             string   `json:"role" validate:"required,oneof=admin manager employee"`
	Position         *string  `json:"position,omitempty" validate:"omitempty,max=100"`
	PhoneNumber      *string  `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	ShiftID          *string  `json:"shift_id,omitempty"`
	BypassLocation   bool     `json:"bypass_location"`
	BaseSalary       string   `json:"base_salary" validate:"required"`
	AnnualLeaveQuota int      `json:"annual_leave_quota" validate:"gte=0,max=365"`
	HireDate         string   `json:"hire_date" validate:"required,date"`
	LocationIDs      []string `json:"location_ids,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	if d, err := decimal.NewFromString(r.BaseSalary); err != nil || d.IsNegative() {
		errs.Add("base_salary", "base_salary must be a non-negative decimal")
	}
	return errs.OrNil()
}

type UpdateEmployeeRequest struct {
	ID               string  `json:"-"`
	FullName         *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=255"`
	Role             *string `json:"role,omitempty" validate:"omitempty,oneof=admin manager employee"`
	Position         *string `json:"position,omitempty" validate:"omitempty,max=100"`
	PhoneNumber      *string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	ShiftID          *string `json:"shift_id,omitempty"`
	BaseSalary       *string `json:"base_salary,omitempty"`
	AnnualLeaveQuota *int    `json:"annual_leave_quota,omitempty" validate:"omitempty,gte=0,max=365"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	if r.BaseSalary != nil {
		if d, err := decimal.NewFromString(*r.BaseSalary); err != nil || d.IsNegative() {
			errs.Add("base_salary", "base_salary must be a non-negative decimal")
		}
	}
	return errs.OrNil()
}

// Apply merges the non-nil fields of r into e. Validate must have passed.
func (r *UpdateEmployeeRequest) Apply(e *Employee) {
	if r.FullName != nil {
		e.FullName = *r.FullName
	}
	if r.Role != nil {
		e.Role = user.Role(*r.Role)
	}
	if r.Position != nil {
		e.Position = r.Position
	}
	if r.PhoneNumber != nil {
		e.PhoneNumber = r.PhoneNumber
	}
	if r.ShiftID != nil {
		if *r.ShiftID == "" {
			e.ShiftID = nil
		} else {
			e.ShiftID = r.ShiftID
		}
	}
	if r.BaseSalary != nil {
		e.BaseSalary = decimal.RequireFromString(*r.BaseSalary)
	}
	if r.AnnualLeaveQuota != nil {
		e.AnnualLeaveQuota = *r.AnnualLeaveQuota
	}
}

type AssignLocationsRequest struct {
	EmployeeID  string   `json:"-"`
	LocationIDs []string `json:"location_ids" validate:"required,dive,required"`
}

func (r *AssignLocationsRequest) Validate() error {
	return validator.Struct(r)
}

type SetBypassRequest struct {
	EmployeeID     string `json:"-"`
	BypassLocation *bool  `json:"bypass_location" validate:"required"`
}

func (r *SetBypassRequest) Validate() error {
	return validator.Struct(r)
}

type EmployeeFilter struct {
	Search   *string
	Role     *string
	IsActive *bool
	Page     int
	Limit    int
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Role != nil && !user.Role(*f.Role).Valid() {
		errs.Add("role", "role must be one of: admin, manager, employee")
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	return errs.OrNil()
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Employees  []EmployeeResponse `json:"employees"`
}
