package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMarker struct {
	dates []time.Time
	err   error
}

func (m *stubMarker) MarkAbsent(ctx context.Context, date time.Time) (int64, error) {
	m.dates = append(m.dates, date)
	return 3, m.err
}

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(time.UTC)
	err := s.AddJob("broken", "not a cron", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestAttendanceJobs_MarksToday(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	fixed := clock.Fixed{T: time.Date(2025, 3, 14, 23, 55, 0, 0, loc)}
	marker := &stubMarker{}

	s := NewScheduler(loc)
	require.NoError(t, NewAttendanceJobs(marker, fixed).RegisterJobs(s, "55 23 * * *"))
	require.Len(t, s.Jobs(), 1)

	s.RunOnce(context.Background())

	require.Len(t, marker.dates, 1)
	assert.Equal(t, "2025-03-14", marker.dates[0].Format(time.DateOnly))
}

func TestAttendanceJobs_PropagatesError(t *testing.T) {
	marker := &stubMarker{err: errors.New("db down")}
	j := NewAttendanceJobs(marker, clock.Fixed{T: time.Now()})
	assert.Error(t, j.MarkAbsentEmployees(context.Background()))
}
