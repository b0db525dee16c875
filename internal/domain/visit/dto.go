package visit

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateVisitRequest struct {
	VisitDate   string     `json:"visit_date" validate:"required,date"`
	ClientName  string     `json:"client_name" validate:"required,max=255"`
	Purpose     string     `json:"purpose" validate:"required,max=1000"`
	ResultNotes *string    `json:"result_notes,omitempty" validate:"omitempty,max=5000"`
	Location    *geo.Point `json:"location,omitempty"`
	Photo       *string    `json:"photo,omitempty"`

	// Parsed by Validate
	Day time.Time `json:"-"`
}

func (r *CreateVisitRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	r.Day, _ = validator.IsValidDate(r.VisitDate)

	var errs validator.ValidationErrors
	if r.Location != nil && !r.Location.Valid() {
		errs.Add("location", "location must contain a valid lat and lng")
	}
	return errs.OrNil()
}

type VisitResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName *string    `json:"employee_name,omitempty"`
	VisitDate    string     `json:"visit_date"`
	ClientName   string     `json:"client_name"`
	Purpose      string     `json:"purpose"`
	ResultNotes  *string    `json:"result_notes,omitempty"`
	Location     *geo.Point `json:"location,omitempty"`
	Photo        *string    `json:"photo,omitempty"`
	Status       string     `json:"status"`
	DecidedBy    *string    `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	RejectNote   *string    `json:"reject_note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ToResponse(v VisitReport) VisitResponse {
	return VisitResponse{
		ID:           v.ID,
		EmployeeID:   v.EmployeeID,
		EmployeeName: v.EmployeeName,
		VisitDate:    v.VisitDate.Format(time.DateOnly),
		ClientName:   v.ClientName,
		Purpose:      v.Purpose,
		ResultNotes:  v.ResultNotes,
		Location:     v.Location,
		Photo:        v.Photo,
		Status:       string(v.Status),
		DecidedBy:    v.DecidedBy,
		DecidedAt:    v.DecidedAt,
		RejectNote:   v.RejectNote,
		CreatedAt:    v.CreatedAt,
	}
}

type VisitFilter struct {
	EmployeeID *string
	Status     *string
	Page       int
	Limit      int
}

func (f *VisitFilter) Validate() error {
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

type ListVisitResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Reports    []VisitResponse `json:"reports"`
}
