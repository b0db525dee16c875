package shift

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type ShiftResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToResponse(s WorkShift) ShiftResponse {
	return ShiftResponse{
		ID:        s.ID,
		Name:      s.Name,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type CreateShiftRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

func (r *CreateShiftRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	if r.StartTime == r.EndTime {
		errs.Add("end_time", "end_time must differ from start_time")
	}
	return errs.OrNil()
}

type UpdateShiftRequest struct {
	ID        string  `json:"-"`
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	StartTime *string `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime   *string `json:"end_time,omitempty" validate:"omitempty,clock"`
}

func (r *UpdateShiftRequest) Validate() error {
	return validator.Struct(r)
}

func (r *UpdateShiftRequest) Apply(s *WorkShift) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.StartTime != nil {
		s.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		s.EndTime = *r.EndTime
	}
}
