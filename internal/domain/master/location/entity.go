package location

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

// PermittedLocation is a named geofence employees may be assigned to.
type PermittedLocation struct {
	ID           string
	Name         string
	Address      *string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (l PermittedLocation) Fence() geo.Fence {
	return geo.Fence{
		Center:       geo.Point{Lat: l.Latitude, Lng: l.Longitude},
		RadiusMeters: l.RadiusMeters,
	}
}
