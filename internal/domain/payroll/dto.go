package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type AddComponentRequest struct {
	EmployeeID string `json:"-"`
	Name       string `json:"name" validate:"required,max=100"`
	Type       string `json:"type" validate:"required,oneof=allowance deduction"`
	Amount     string `json:"amount" validate:"required"`

	// Parsed by Validate
	Value decimal.Decimal `json:"-"`
}

func (r *AddComponentRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	v, err := decimal.NewFromString(r.Amount)
	if err != nil || !v.IsPositive() {
		return validator.ValidationErrors{{Field: "amount", Message: "amount must be a positive decimal"}}
	}
	r.Value = v
	return nil
}

type ComponentResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
}

func ToComponentResponse(c EmployeeComponent) ComponentResponse {
	return ComponentResponse{
		ID:         c.ID,
		EmployeeID: c.EmployeeID,
		Name:       c.Name,
		Type:       string(c.Type),
		Amount:     c.Amount,
	}
}

type GenerateSlipRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Year       int    `json:"year" validate:"required,gte=2000,max=2100"`
	Month      int    `json:"month" validate:"required,gte=1,max=12"`
}

func (r *GenerateSlipRequest) Validate() error {
	return validator.Struct(r)
}

type SlipResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     *string         `json:"employee_name,omitempty"`
	EmployeeCode     *string         `json:"employee_code,omitempty"`
	PeriodYear       int             `json:"period_year"`
	PeriodMonth      int             `json:"period_month"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	Allowances       []Line          `json:"allowances"`
	Deductions       []Line          `json:"deductions"`
	OvertimeHours    decimal.Decimal `json:"overtime_hours"`
	OvertimePay      decimal.Decimal `json:"overtime_pay"`
	WorkingDays      int             `json:"working_days"`
	PresentDays      int             `json:"present_days"`
	LateDays         int             `json:"late_days"`
	LeaveDays        int             `json:"leave_days"`
	AbsentDays       int             `json:"absent_days"`
	AbsenceDeduction decimal.Decimal `json:"absence_deduction"`
	GrossPay         decimal.Decimal `json:"gross_pay"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetPay           decimal.Decimal `json:"net_pay"`
	Status           string          `json:"status"`
	PublishedAt      *time.Time      `json:"published_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func ToSlipResponse(s Slip) SlipResponse {
	return SlipResponse{
		ID:               s.ID,
		EmployeeID:       s.EmployeeID,
		EmployeeName:     s.EmployeeName,
		EmployeeCode:     s.EmployeeCode,
		PeriodYear:       s.PeriodYear,
		PeriodMonth:      s.PeriodMonth,
		BaseSalary:       s.BaseSalary,
		Allowances:       s.Allowances,
		Deductions:       s.Deductions,
		OvertimeHours:    s.OvertimeHours,
		OvertimePay:      s.OvertimePay,
		WorkingDays:      s.WorkingDays,
		PresentDays:      s.PresentDays,
		LateDays:         s.LateDays,
		LeaveDays:        s.LeaveDays,
		AbsentDays:       s.AbsentDays,
		AbsenceDeduction: s.AbsenceDeduction,
		GrossPay:         s.GrossPay,
		TotalDeductions:  s.TotalDeductions,
		NetPay:           s.NetPay,
		Status:           string(s.Status),
		PublishedAt:      s.PublishedAt,
		CreatedAt:        s.CreatedAt,
	}
}

type SlipFilter struct {
	EmployeeID *string
	Year       *int
	Month      *int
	Status     *string
	Page       int
	Limit      int
}

func (f *SlipFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if f.Status != nil && *f.Status != string(SlipStatusDraft) && *f.Status != string(SlipStatusPublished) {
		errs.Add("status", "status must be one of: draft, published")
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

type ListSlipResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Slips      []SlipResponse `json:"slips"`
}
