package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.clock_in, a.clock_out,
	a.clock_in_lat, a.clock_in_lng, a.clock_out_lat, a.clock_out_lng,
	a.clock_in_photo, a.clock_out_photo, a.status, a.notes,
	a.created_at, a.updated_at
`

// returningAttendance mirrors attendanceColumns for INSERT/UPDATE ... RETURNING.
const returningAttendance = `
	id, employee_id, date, clock_in, clock_out,
	clock_in_lat, clock_in_lng, clock_out_lat, clock_out_lng,
	clock_in_photo, clock_out_photo, status, notes,
	created_at, updated_at
`

func scanAttendance(row pgx.Row, extra ...any) (attendance.Record, error) {
	var rec attendance.Record
	var inLat, inLng, outLat, outLng *float64

	dest := []any{
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.ClockIn, &rec.ClockOut,
		&inLat, &inLng, &outLat, &outLng,
		&rec.ClockInPhoto, &rec.ClockOutPhoto, &rec.Status, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attendance.Record{}, err
	}

	rec.ClockInLocation = toPoint(inLat, inLng)
	rec.ClockOutLocation = toPoint(outLat, outLng)
	return rec, nil
}

func toPoint(lat, lng *float64) *geo.Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Lng: *lng}
}

func fromPoint(p *geo.Point) (lat, lng *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Lat, &p.Lng
}

func (a *attendanceRepository) getOne(ctx context.Context, query string, args ...any) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rec, err := scanAttendance(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("get attendance: %w", err)
	}
	return rec, nil
}

func (a *attendanceRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	return a.getOne(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date = $2
		FOR UPDATE
	`, employeeID, date)
}

func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	return a.getOne(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date = $2
	`, employeeID, date)
}

func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	var name *string
	rec, err := scanAttendance(q.QueryRow(ctx, `
		SELECT `+attendanceColumns+`, e.full_name
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1
	`, id), &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("get attendance: %w", err)
	}
	rec.EmployeeName = name
	return rec, nil
}

// CreateClockIn relies on the (employee_id, date) unique key: a concurrent
// insert for the same day makes this a no-op with created=false.
func (a *attendanceRepository) CreateClockIn(ctx context.Context, r attendance.Record) (attendance.Record, bool, error) {
	q := GetQuerier(ctx, a.db)

	id, err := newID()
	if err != nil {
		return attendance.Record{}, false, err
	}
	lat, lng := fromPoint(r.ClockInLocation)

	rec, err := scanAttendance(q.QueryRow(ctx, `
		INSERT INTO attendances (
			id, employee_id, date, clock_in, clock_in_lat, clock_in_lng, clock_in_photo, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT uq_attendances_employee_date DO NOTHING
		RETURNING `+returningAttendance,
		id, r.EmployeeID, r.Date, r.ClockIn, lat, lng, r.ClockInPhoto, r.Status, r.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, false, nil
		}
		return attendance.Record{}, false, fmt.Errorf("create clock-in: %w", err)
	}
	return rec, true, nil
}

// CompleteClockOut is a conditional fill: only the first writer wins.
func (a *attendanceRepository) CompleteClockOut(ctx context.Context, id string, at time.Time, point *geo.Point, photo *string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)
	lat, lng := fromPoint(point)

	rec, err := scanAttendance(q.QueryRow(ctx, `
		UPDATE attendances
		SET clock_out = $2, clock_out_lat = $3, clock_out_lng = $4, clock_out_photo = $5, updated_at = NOW()
		WHERE id = $1 AND clock_out IS NULL AND clock_in IS NOT NULL
		RETURNING `+returningAttendance,
		id, at, lat, lng, photo,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAlreadyCompleted
		}
		return attendance.Record{}, fmt.Errorf("complete clock-out: %w", err)
	}
	return rec, nil
}

func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	where := "TRUE"
	args := []any{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.FromDate != nil {
		where += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.FromDate)
		argIdx++
	}
	if filter.ToDate != nil {
		where += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.ToDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		where += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM attendances a WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count attendances: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, e.full_name
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY a.date DESC, e.full_name ASC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, pageOffset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query attendances: %w", err)
	}
	defer rows.Close()

	records := []attendance.Record{}
	for rows.Next() {
		var name *string
		rec, err := scanAttendance(rows, &name)
		if err != nil {
			return nil, 0, fmt.Errorf("scan attendance: %w", err)
		}
		rec.EmployeeName = name
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate attendances: %w", err)
	}

	return records, total, nil
}

func (a *attendanceRepository) MarkMissing(ctx context.Context, employeeIDs []string, date time.Time, status attendance.Status) (int64, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, a.db)

	ids := make([]string, 0, len(employeeIDs))
	for range employeeIDs {
		id, err := newID()
		if err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}

	tag, err := q.Exec(ctx, `
		INSERT INTO attendances (id, employee_id, date, status)
		SELECT t.id, t.employee_id, $3, $4
		FROM unnest($1::uuid[], $2::uuid[]) AS t(id, employee_id)
		ON CONFLICT ON CONSTRAINT uq_attendances_employee_date DO NOTHING
	`, ids, employeeIDs, date, status)
	if err != nil {
		return 0, fmt.Errorf("mark %s attendances: %w", status, err)
	}
	return tag.RowsAffected(), nil
}
