package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type ComponentType string

const (
	ComponentTypeAllowance ComponentType = "allowance"
	ComponentTypeDeduction ComponentType = "deduction"
)

// EmployeeComponent is a recurring monthly allowance or deduction.
type EmployeeComponent struct {
	ID         string
	EmployeeID string
	Name       string
	Type       ComponentType
	Amount     decimal.Decimal
	CreatedAt  time.Time
}

type SlipStatus string

const (
	SlipStatusDraft     SlipStatus = "draft"
	SlipStatusPublished SlipStatus = "published"
)

// Line is one named amount on a slip.
type Line struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Slip struct {
	ID               string
	EmployeeID       string
	PeriodYear       int
	PeriodMonth      int
	BaseSalary       decimal.Decimal
	Allowances       []Line
	Deductions       []Line
	OvertimeHours    decimal.Decimal
	OvertimePay      decimal.Decimal
	WorkingDays      int
	PresentDays      int
	LateDays         int
	LeaveDays        int
	AbsentDays       int
	AbsenceDeduction decimal.Decimal
	GrossPay         decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetPay           decimal.Decimal
	Status           SlipStatus
	PublishedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Join
	EmployeeName *string
	EmployeeCode *string
}

// Period returns the first and last calendar day of the slip month.
func Period(year, month int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, -1)
}

// WorkingDays counts Monday-Friday dates in [from, to].
func WorkingDays(from, to time.Time) int {
	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// AttendanceSummary counts attendance records by status in a period.
type AttendanceSummary struct {
	Present int
	Late    int
	Leave   int
	Absent  int
}

// Rates are the payroll policy knobs.
type Rates struct {
	MonthlyHours       int
	OvertimeMultiplier decimal.Decimal
}

type Input struct {
	BaseSalary    decimal.Decimal
	Components    []EmployeeComponent
	OvertimeHours decimal.Decimal
	Attendance    AttendanceSummary
	WorkingDays   int
	Rates         Rates
}

// Compute fills every monetary field of a slip. Amounts are rounded to two
// decimals; net pay never goes below zero.
func Compute(in Input) Slip {
	s := Slip{
		BaseSalary:    in.BaseSalary.Round(2),
		OvertimeHours: in.OvertimeHours.Round(2),
		WorkingDays:   in.WorkingDays,
		PresentDays:   in.Attendance.Present,
		LateDays:      in.Attendance.Late,
		LeaveDays:     in.Attendance.Leave,
		AbsentDays:    in.Attendance.Absent,
		Allowances:    []Line{},
		Deductions:    []Line{},
	}

	allowances := decimal.Zero
	deductions := decimal.Zero
	for _, c := range in.Components {
		line := Line{Name: c.Name, Amount: c.Amount.Round(2)}
		switch c.Type {
		case ComponentTypeAllowance:
			s.Allowances = append(s.Allowances, line)
			allowances = allowances.Add(line.Amount)
		case ComponentTypeDeduction:
			s.Deductions = append(s.Deductions, line)
			deductions = deductions.Add(line.Amount)
		}
	}

	if in.Rates.MonthlyHours > 0 {
		hourly := in.BaseSalary.Div(decimal.NewFromInt(int64(in.Rates.MonthlyHours)))
		s.OvertimePay = hourly.Mul(in.OvertimeHours).Mul(in.Rates.OvertimeMultiplier).Round(2)
	}
	if in.WorkingDays > 0 && in.Attendance.Absent > 0 {
		daily := in.BaseSalary.Div(decimal.NewFromInt(int64(in.WorkingDays)))
		s.AbsenceDeduction = daily.Mul(decimal.NewFromInt(int64(in.Attendance.Absent))).Round(2)
	}

	s.GrossPay = s.BaseSalary.Add(allowances).Add(s.OvertimePay)
	s.TotalDeductions = deductions.Add(s.AbsenceDeduction)
	s.NetPay = decimal.Max(decimal.Zero, s.GrossPay.Sub(s.TotalDeductions))
	return s
}
