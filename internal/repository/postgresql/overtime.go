package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type overtimeRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db}
}

const overtimeColumns = `
	o.id, o.employee_id, o.date, o.start_time, o.end_time, o.duration_hours, o.reason, o.status,
	o.decided_by, o.decided_at, o.reject_note, o.created_at, o.updated_at, e.full_name
`

func scanOvertime(row pgx.Row) (overtime.OvertimeRequest, error) {
	var o overtime.OvertimeRequest
	err := row.Scan(
		&o.ID, &o.EmployeeID, &o.Date, &o.StartTime, &o.EndTime, &o.DurationHours, &o.Reason, &o.Status,
		&o.DecidedBy, &o.DecidedAt, &o.RejectNote, &o.CreatedAt, &o.UpdatedAt, &o.EmployeeName,
	)
	return o, err
}

func (r *overtimeRepositoryImpl) Create(ctx context.Context, o overtime.OvertimeRequest) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return overtime.OvertimeRequest{}, err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO overtime_requests (id, employee_id, date, start_time, end_time, duration_hours, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, id, o.EmployeeID, o.Date, o.StartTime, o.EndTime, o.DurationHours, o.Reason, o.Status).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return overtime.OvertimeRequest{}, overtime.ErrDuplicateDate
		}
		return overtime.OvertimeRequest{}, fmt.Errorf("create overtime request: %w", err)
	}
	return o, nil
}

func (r *overtimeRepositoryImpl) GetByID(ctx context.Context, id string) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	o, err := scanOvertime(q.QueryRow(ctx, `
		SELECT `+overtimeColumns+`
		FROM overtime_requests o
		JOIN employees e ON e.id = o.employee_id
		WHERE o.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.OvertimeRequest{}, overtime.ErrOvertimeNotFound
		}
		return overtime.OvertimeRequest{}, fmt.Errorf("get overtime request: %w", err)
	}
	return o, nil
}

func (r *overtimeRepositoryImpl) List(ctx context.Context, filter overtime.OvertimeFilter) ([]overtime.OvertimeRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args, argIdx := approvalWhere("o", filter.EmployeeID, filter.Status)

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM overtime_requests o WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count overtime requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM overtime_requests o
		JOIN employees e ON e.id = o.employee_id
		WHERE %s
		ORDER BY o.date DESC, o.created_at DESC
		LIMIT $%d OFFSET $%d
	`, overtimeColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, pageOffset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list overtime requests: %w", err)
	}
	defer rows.Close()

	requests := []overtime.OvertimeRequest{}
	for rows.Next() {
		o, err := scanOvertime(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan overtime request: %w", err)
		}
		requests = append(requests, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate overtime requests: %w", err)
	}
	return requests, total, nil
}

func (r *overtimeRepositoryImpl) Decide(ctx context.Context, id string, d approval.Decision) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, decideQuery("overtime_requests"), id, d.Status, d.DecidedBy, d.DecidedAt, d.RejectNote)
	if err != nil {
		return overtime.OvertimeRequest{}, fmt.Errorf("decide overtime request: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return overtime.OvertimeRequest{}, err
	}
	if tag.RowsAffected() == 0 {
		return current, approval.ErrAlreadyProcessed
	}
	return current, nil
}

func (r *overtimeRepositoryImpl) ApprovedHours(ctx context.Context, employeeID string, from, to time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var hours decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(duration_hours), 0)
		FROM overtime_requests
		WHERE employee_id = $1 AND status = 'approved' AND date BETWEEN $2 AND $3
	`, employeeID, from, to).Scan(&hours)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum approved overtime: %w", err)
	}
	return hours, nil
}
