package attendance

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// SubmitRequest is the body of POST /attendance. Both fields are optional on
// the wire; the location policy decides whether a point is required.
type SubmitRequest struct {
	Location *geo.Point `json:"location,omitempty"`
	Photo    *string    `json:"photo,omitempty"`

	// Malformed is set when a location was sent but is not two numbers.
	Malformed bool `json:"-"`
}

// UnmarshalJSON keeps a location that is not exactly two numbers as
// Malformed instead of failing, so bypass employees can still submit.
func (r *SubmitRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Location json.RawMessage `json:"location"`
		Photo    *string         `json:"photo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Photo = raw.Photo
	r.Location = nil
	r.Malformed = false

	loc := strings.TrimSpace(string(raw.Location))
	if loc == "" || loc == "null" {
		return nil
	}

	var fields map[string]*float64
	if err := json.Unmarshal(raw.Location, &fields); err != nil {
		r.Malformed = true
		return nil
	}
	lat, lng := fields["lat"], fields["lng"]
	if lat == nil || lng == nil {
		r.Malformed = true
		return nil
	}
	r.Location = &geo.Point{Lat: *lat, Lng: *lng}
	return nil
}

// Point returns the submitted point when it is usable, and reports whether
// a location was sent but is malformed or out of range.
func (r SubmitRequest) Point() (p *geo.Point, unusable bool) {
	if r.Malformed {
		return nil, true
	}
	if r.Location == nil {
		return nil, false
	}
	if !r.Location.Valid() {
		return nil, true
	}
	return r.Location, false
}

// RecordResponse is the JSON projection of a Record.
type RecordResponse struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	EmployeeName     *string    `json:"employeeName,omitempty"`
	Date             string     `json:"date"`
	ClockIn          *time.Time `json:"clockIn"`
	ClockOut         *time.Time `json:"clockOut"`
	ClockInLocation  *geo.Point `json:"clockInLocation"`
	ClockOutLocation *geo.Point `json:"clockOutLocation"`
	ClockInPhoto     *string    `json:"clockInPhoto"`
	ClockOutPhoto    *string    `json:"clockOutPhoto"`
	Status           Status     `json:"status"`
	Notes            *string    `json:"notes"`
}

func ToResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		Date:             r.Date.Format(time.DateOnly),
		ClockIn:          r.ClockIn,
		ClockOut:         r.ClockOut,
		ClockInLocation:  r.ClockInLocation,
		ClockOutLocation: r.ClockOutLocation,
		ClockInPhoto:     r.ClockInPhoto,
		ClockOutPhoto:    r.ClockOutPhoto,
		Status:           r.Status,
		Notes:            r.Notes,
	}
}

func ToResponses(records []Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToResponse(r))
	}
	return out
}

type TodayResponse struct {
	Date        string          `json:"date"`
	Record      *RecordResponse `json:"record"`
	CanClockIn  bool            `json:"canClockIn"`
	CanClockOut bool            `json:"canClockOut"`
}

type AttendanceFilter struct {
	EmployeeID *string
	From       *string
	To         *string
	Status     *string
	Page       int
	Limit      int

	// Parsed by Validate
	FromDate *time.Time
	ToDate   *time.Time
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.From != nil {
		if d, ok := validator.IsValidDate(*f.From); ok {
			f.FromDate = &d
		} else {
			errs.Add("from", "from must be in YYYY-MM-DD format")
		}
	}
	if f.To != nil {
		if d, ok := validator.IsValidDate(*f.To); ok {
			f.ToDate = &d
		} else {
			errs.Add("to", "to must be in YYYY-MM-DD format")
		}
	}
	if f.FromDate != nil && f.ToDate != nil && f.ToDate.Before(*f.FromDate) {
		errs.Add("to", "to must not be before from")
	}
	if f.Status != nil && !Status(*f.Status).Valid() {
		errs.Add("status", "status must be one of: present, late, absent, leave")
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

type ListAttendanceResponse struct {
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
	Records    []RecordResponse `json:"records"`
}

type ExportRequest struct {
	From       string  `validate:"required,date"`
	To         string  `validate:"required,date"`
	EmployeeID *string `validate:"omitempty"`
}

func (r *ExportRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	from, _ := validator.IsValidDate(r.From)
	to, _ := validator.IsValidDate(r.To)
	var errs validator.ValidationErrors
	if to.Before(from) {
		errs.Add("To", "to must not be before from")
	} else if to.Sub(from) > 366*24*time.Hour {
		errs.Add("To", "export range must not exceed one year")
	}
	return errs.OrNil()
}
