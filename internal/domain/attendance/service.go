package attendance

import (
	"context"
	"io"
	"time"
)

type AttendanceService interface {
	// Submit records a clock-in, or a clock-out when today's record is open.
	Submit(ctx context.Context, req SubmitRequest) (RecordResponse, error)
	Today(ctx context.Context) (TodayResponse, error)
	Get(ctx context.Context, id string) (RecordResponse, error)
	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	Export(ctx context.Context, req ExportRequest, w io.Writer) error
	// MarkAbsent fills in absent or leave records for the given date.
	MarkAbsent(ctx context.Context, date time.Time) (int64, error)
}
