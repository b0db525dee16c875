package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

// AbsentMarker fills in missing attendance for a date.
type AbsentMarker interface {
	MarkAbsent(ctx context.Context, date time.Time) (int64, error)
}

type AttendanceJobs struct {
	marker AbsentMarker
	clock  clock.Clock
}

func NewAttendanceJobs(marker AbsentMarker, c clock.Clock) *AttendanceJobs {
	return &AttendanceJobs{marker: marker, clock: c}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, markAbsentSpec string) error {
	return scheduler.AddJob("mark_absent_employees", markAbsentSpec, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees closes out today for everyone who never clocked in.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	date := clock.Today(j.clock)
	n, err := j.marker.MarkAbsent(ctx, date)
	if err != nil {
		return err
	}
	slog.Info("Cron: marked missing attendance", "date", date.Format(time.DateOnly), "count", n)
	return nil
}
