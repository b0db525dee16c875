package visit

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

// VisitReport records an employee's field visit to a client or site.
type VisitReport struct {
	ID          string
	EmployeeID  string
	VisitDate   time.Time
	ClientName  string
	Purpose     string
	ResultNotes *string
	Location    *geo.Point
	Photo       *string
	Status      approval.Status
	DecidedBy   *string
	DecidedAt   *time.Time
	RejectNote  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join
	EmployeeName *string
}
