package attendance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet    = "Attendance"
	exportPageSize = 100
)

var exportHeader = []any{
	"Date", "Employee ID", "Employee", "Status", "Clock In", "Clock Out",
	"Clock In Location", "Clock Out Location", "Worked Hours", "Notes",
}

// Export writes an xlsx workbook of every record in the requested range.
func (s *AttendanceServiceImpl) Export(ctx context.Context, req attendance.ExportRequest, w io.Writer) error {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return err
	}
	if !s.authorizer.Can(session.Role, user.PermissionAttendanceExport) {
		return attendance.ErrForbiddenEmployee
	}
	if err := req.Validate(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("prepare workbook: %w", err)
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("prepare workbook: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("prepare workbook: %w", err)
	}
	if err := sw.SetColWidth(1, len(exportHeader), 18); err != nil {
		return fmt.Errorf("prepare workbook: %w", err)
	}
	if err := sw.SetRow("A1", exportHeader, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	filter := attendance.AttendanceFilter{
		EmployeeID: req.EmployeeID,
		From:       &req.From,
		To:         &req.To,
		Limit:      exportPageSize,
	}
	row := 2
	for page := 1; ; page++ {
		filter.Page = page
		if err := filter.Validate(); err != nil {
			return err
		}
		records, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}

		for _, r := range records {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := sw.SetRow(cell, exportRow(r)); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
		if len(records) == 0 || int64(page*exportPageSize) >= total {
			break
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush workbook: %w", err)
	}
	_, err = f.WriteTo(w)
	return err
}

func exportRow(r attendance.Record) []any {
	name := ""
	if r.EmployeeName != nil {
		name = *r.EmployeeName
	}
	notes := ""
	if r.Notes != nil {
		notes = *r.Notes
	}

	worked := ""
	if r.ClockIn != nil && r.ClockOut != nil {
		worked = fmt.Sprintf("%.2f", r.ClockOut.Sub(*r.ClockIn).Hours())
	}

	return []any{
		r.Date.Format(time.DateOnly),
		r.EmployeeID,
		name,
		string(r.Status),
		formatTime(r.ClockIn),
		formatTime(r.ClockOut),
		formatPoint(r.ClockInLocation),
		formatPoint(r.ClockOutLocation),
		worked,
		notes,
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.TimeOnly)
}

func formatPoint(p *geo.Point) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lng)
}
