package location

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type LocationResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      *string   `json:"address,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToResponse(l PermittedLocation) LocationResponse {
	return LocationResponse{
		ID:           l.ID,
		Name:         l.Name,
		Address:      l.Address,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		RadiusMeters: l.RadiusMeters,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

type CreateLocationRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Address      *string  `json:"address,omitempty" validate:"omitempty,max=255"`
	Latitude     *float64 `json:"latitude" validate:"required"`
	Longitude    *float64 `json:"longitude" validate:"required"`
	RadiusMeters float64  `json:"radius_meters" validate:"gt=0"`
}

func (r *CreateLocationRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if !(geo.Point{Lat: *r.Latitude, Lng: *r.Longitude}).Valid() {
		return validator.ValidationErrors{{Field: "latitude", Message: "must be a valid coordinate"}}
	}
	return nil
}

type UpdateLocationRequest struct {
	ID           string   `json:"-"`
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Address      *string  `json:"address,omitempty" validate:"omitempty,max=255"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters *float64 `json:"radius_meters,omitempty" validate:"omitempty,gt=0"`
}

func (r *UpdateLocationRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs.Add("latitude", "latitude and longitude must be updated together")
	} else if r.Latitude != nil && !(geo.Point{Lat: *r.Latitude, Lng: *r.Longitude}).Valid() {
		errs.Add("latitude", "must be a valid coordinate")
	}
	return errs.OrNil()
}

// Apply merges the non-nil fields of r into l.
func (r *UpdateLocationRequest) Apply(l *PermittedLocation) {
	if r.Name != nil {
		l.Name = *r.Name
	}
	if r.Address != nil {
		l.Address = r.Address
	}
	if r.Latitude != nil {
		l.Latitude = *r.Latitude
		l.Longitude = *r.Longitude
	}
	if r.RadiusMeters != nil {
		l.RadiusMeters = *r.RadiusMeters
	}
}
