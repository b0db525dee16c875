package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

const leaveColumns = `
	l.id, l.employee_id, l.leave_type, l.start_date, l.end_date, l.reason, l.status,
	l.decided_by, l.decided_at, l.reject_note, l.created_at, l.updated_at, e.full_name
`

func scanLeave(row pgx.Row) (leave.LeaveRequest, error) {
	var l leave.LeaveRequest
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.LeaveType, &l.StartDate, &l.EndDate, &l.Reason, &l.Status,
		&l.DecidedBy, &l.DecidedAt, &l.RejectNote, &l.CreatedAt, &l.UpdatedAt, &l.EmployeeName,
	)
	return l, err
}

func (r *leaveRepositoryImpl) Create(ctx context.Context, l leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, id, l.EmployeeID, l.LeaveType, l.StartDate, l.EndDate, l.Reason, l.Status).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("create leave request: %w", err)
	}
	return l, nil
}

func (r *leaveRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	l, err := scanLeave(q.QueryRow(ctx, `
		SELECT `+leaveColumns+`
		FROM leave_requests l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("get leave request: %w", err)
	}
	return l, nil
}

func (r *leaveRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args, argIdx := approvalWhere("l", filter.EmployeeID, filter.Status)

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM leave_requests l WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests l
		JOIN employees e ON e.id = l.employee_id
		WHERE %s
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, pageOffset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan leave request: %w", err)
		}
		requests = append(requests, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate leave requests: %w", err)
	}
	return requests, total, nil
}

func (r *leaveRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_date <= $3 AND end_date >= $2
		)
	`, employeeID, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check leave overlap: %w", err)
	}
	return exists, nil
}

func (r *leaveRepositoryImpl) Decide(ctx context.Context, id string, d approval.Decision) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, decideQuery("leave_requests"), id, d.Status, d.DecidedBy, d.DecidedAt, d.RejectNote)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("decide leave request: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if tag.RowsAffected() == 0 {
		return current, approval.ErrAlreadyProcessed
	}
	return current, nil
}

func (r *leaveRepositoryImpl) ApprovedEmployeeIDsOn(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT DISTINCT employee_id FROM leave_requests
		WHERE status = 'approved' AND start_date <= $1 AND end_date >= $1
	`, date)
	if err != nil {
		return nil, fmt.Errorf("list employees on leave: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect employees on leave: %w", err)
	}
	return ids, nil
}

// decideQuery moves a row out of pending. Zero affected rows means it was
// already resolved or does not exist.
func decideQuery(table string) string {
	return `
		UPDATE ` + table + `
		SET status = $2, decided_by = $3, decided_at = $4, reject_note = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
}

func approvalWhere(alias string, employeeID, status *string) (string, []any, int) {
	where := "TRUE"
	args := []any{}
	argIdx := 1

	if employeeID != nil && *employeeID != "" {
		where += fmt.Sprintf(" AND %s.employee_id = $%d", alias, argIdx)
		args = append(args, *employeeID)
		argIdx++
	}
	if status != nil && *status != "" {
		where += fmt.Sprintf(" AND %s.status = $%d", alias, argIdx)
		args = append(args, *status)
		argIdx++
	}
	return where, args, argIdx
}
