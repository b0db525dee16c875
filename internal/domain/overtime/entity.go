package overtime

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/shopspring/decimal"
)

// MaxHours is the longest overtime a single request may claim.
var MaxHours = decimal.NewFromInt(8)

type OvertimeRequest struct {
	ID            string
	EmployeeID    string
	Date          time.Time
	StartTime     string
	EndTime       string
	DurationHours decimal.Decimal
	Reason        string
	Status        approval.Status
	DecidedBy     *string
	DecidedAt     *time.Time
	RejectNote    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	EmployeeName *string
}

// Duration returns (end - start) in hours rounded to two decimals. start and
// end are minutes since midnight.
func Duration(startMinutes, endMinutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(endMinutes - startMinutes)).
		Div(decimal.NewFromInt(60)).
		Round(2)
}

// ValidDuration reports whether d is in (0, MaxHours].
func ValidDuration(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThanOrEqual(MaxHours)
}
