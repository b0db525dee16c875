package overtime

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateOvertimeRequest struct {
	Date      string `json:"date" validate:"required,date"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Reason    string `json:"reason" validate:"required,max=1000"`

	// Set by Validate
	Day      time.Time       `json:"-"`
	Duration decimal.Decimal `json:"-"`
}

func (r *CreateOvertimeRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	r.Day, _ = validator.IsValidDate(r.Date)
	start, _ := validator.ParseClock(r.StartTime)
	end, _ := validator.ParseClock(r.EndTime)
	r.Duration = Duration(start, end)

	if !ValidDuration(r.Duration) {
		return validator.ValidationErrors{{Field: "end_time", Message: ErrInvalidDuration.Error()}}
	}
	return nil
}

type OvertimeResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	Date          string          `json:"date"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	Reason        string          `json:"reason"`
	Status        string          `json:"status"`
	DecidedBy     *string         `json:"decided_by,omitempty"`
	DecidedAt     *time.Time      `json:"decided_at,omitempty"`
	RejectNote    *string         `json:"reject_note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func ToResponse(o OvertimeRequest) OvertimeResponse {
	return OvertimeResponse{
		ID:            o.ID,
		EmployeeID:    o.EmployeeID,
		EmployeeName:  o.EmployeeName,
		Date:          o.Date.Format(time.DateOnly),
		StartTime:     o.StartTime,
		EndTime:       o.EndTime,
		DurationHours: o.DurationHours,
		Reason:        o.Reason,
		Status:        string(o.Status),
		DecidedBy:     o.DecidedBy,
		DecidedAt:     o.DecidedAt,
		RejectNote:    o.RejectNote,
		CreatedAt:     o.CreatedAt,
	}
}

type OvertimeFilter struct {
	EmployeeID *string
	Status     *string
	Page       int
	Limit      int
}

func (f *OvertimeFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && !approval.Status(*f.Status).Valid() {
		errs.Add("status", "status must be one of: pending, approved, rejected")
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

type ListOvertimeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Requests   []OvertimeResponse `json:"requests"`
}
