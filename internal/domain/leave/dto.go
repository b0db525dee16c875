package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" validate:"required,oneof=annual sick permission"`
	StartDate string `json:"start_date" validate:"required,date"`
	EndDate   string `json:"end_date" validate:"required,date"`
	Reason    string `json:"reason" validate:"required,max=1000"`

	// Parsed by Validate
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *CreateLeaveRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	r.Start, _ = validator.IsValidDate(r.StartDate)
	r.End, _ = validator.IsValidDate(r.EndDate)

	var errs validator.ValidationErrors
	if r.End.Before(r.Start) {
		errs.Add("end_date", "end_date must not be before start_date")
	} else if DayCount(r.Start, r.End) > 90 {
		errs.Add("end_date", "a single leave request must not exceed 90 days")
	}
	return errs.OrNil()
}

type LeaveResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName *string    `json:"employee_name,omitempty"`
	LeaveType    string     `json:"leave_type"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	TotalDays    int        `json:"total_days"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	DecidedBy    *string    `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	RejectNote   *string    `json:"reject_note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ToResponse(l LeaveRequest) LeaveResponse {
	return LeaveResponse{
		ID:           l.ID,
		EmployeeID:   l.EmployeeID,
		EmployeeName: l.EmployeeName,
		LeaveType:    string(l.LeaveType),
		StartDate:    l.StartDate.Format(time.DateOnly),
		EndDate:      l.EndDate.Format(time.DateOnly),
		TotalDays:    l.DayCount(),
		Reason:       l.Reason,
		Status:       string(l.Status),
		DecidedBy:    l.DecidedBy,
		DecidedAt:    l.DecidedAt,
		RejectNote:   l.RejectNote,
		CreatedAt:    l.CreatedAt,
	}
}

type LeaveFilter struct {
	EmployeeID *string
	Status     *string
	Page       int
	Limit      int
}

func (f *LeaveFilter) Validate() error {
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

type ListLeaveResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Requests   []LeaveResponse `json:"requests"`
}
