package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

func (r *payrollRepositoryImpl) AddComponent(ctx context.Context, c payroll.EmployeeComponent) (payroll.EmployeeComponent, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return payroll.EmployeeComponent{}, err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO payroll_components (id, employee_id, name, type, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, id, c.EmployeeID, c.Name, c.Type, c.Amount).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return payroll.EmployeeComponent{}, fmt.Errorf("add payroll component: %w", err)
	}
	return c, nil
}

func (r *payrollRepositoryImpl) ListComponents(ctx context.Context, employeeID string) ([]payroll.EmployeeComponent, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_id, name, type, amount, created_at
		FROM payroll_components
		WHERE employee_id = $1
		ORDER BY type, name
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list payroll components: %w", err)
	}
	defer rows.Close()

	components := []payroll.EmployeeComponent{}
	for rows.Next() {
		var c payroll.EmployeeComponent
		if err := rows.Scan(&c.ID, &c.EmployeeID, &c.Name, &c.Type, &c.Amount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payroll component: %w", err)
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (r *payrollRepositoryImpl) DeleteComponent(ctx context.Context, employeeID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_components WHERE id = $1 AND employee_id = $2`, id, employeeID)
	if err != nil {
		return fmt.Errorf("delete payroll component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrComponentNotFound
	}
	return nil
}

const slipColumns = `
	s.id, s.employee_id, s.period_year, s.period_month, s.base_salary, s.allowances, s.deductions,
	s.overtime_hours, s.overtime_pay, s.working_days, s.present_days, s.late_days, s.leave_days,
	s.absent_days, s.absence_deduction, s.gross_pay, s.total_deductions, s.net_pay, s.status,
	s.published_at, s.created_at, s.updated_at, e.full_name, e.employee_code
`

func scanSlip(row pgx.Row) (payroll.Slip, error) {
	var s payroll.Slip
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.PeriodYear, &s.PeriodMonth, &s.BaseSalary, &s.Allowances, &s.Deductions,
		&s.OvertimeHours, &s.OvertimePay, &s.WorkingDays, &s.PresentDays, &s.LateDays, &s.LeaveDays,
		&s.AbsentDays, &s.AbsenceDeduction, &s.GrossPay, &s.TotalDeductions, &s.NetPay, &s.Status,
		&s.PublishedAt, &s.CreatedAt, &s.UpdatedAt, &s.EmployeeName, &s.EmployeeCode,
	)
	return s, err
}

// UpsertDraft replaces the period's slip only while it is a draft.
func (r *payrollRepositoryImpl) UpsertDraft(ctx context.Context, s payroll.Slip) (payroll.Slip, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return payroll.Slip{}, err
	}

	var slipID string
	err = q.QueryRow(ctx, `
		INSERT INTO payroll_slips (
			id, employee_id, period_year, period_month, base_salary, allowances, deductions,
			overtime_hours, overtime_pay, working_days, present_days, late_days, leave_days,
			absent_days, absence_deduction, gross_pay, total_deductions, net_pay, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 'draft')
		ON CONFLICT ON CONSTRAINT uq_payroll_slips_period DO UPDATE SET
			base_salary = EXCLUDED.base_salary,
			allowances = EXCLUDED.allowances,
			deductions = EXCLUDED.deductions,
			overtime_hours = EXCLUDED.overtime_hours,
			overtime_pay = EXCLUDED.overtime_pay,
			working_days = EXCLUDED.working_days,
			present_days = EXCLUDED.present_days,
			late_days = EXCLUDED.late_days,
			leave_days = EXCLUDED.leave_days,
			absent_days = EXCLUDED.absent_days,
			absence_deduction = EXCLUDED.absence_deduction,
			gross_pay = EXCLUDED.gross_pay,
			total_deductions = EXCLUDED.total_deductions,
			net_pay = EXCLUDED.net_pay,
			updated_at = NOW()
		WHERE payroll_slips.status = 'draft'
		RETURNING id
	`,
		id, s.EmployeeID, s.PeriodYear, s.PeriodMonth, s.BaseSalary, s.Allowances, s.Deductions,
		s.OvertimeHours, s.OvertimePay, s.WorkingDays, s.PresentDays, s.LateDays, s.LeaveDays,
		s.AbsentDays, s.AbsenceDeduction, s.GrossPay, s.TotalDeductions, s.NetPay,
	).Scan(&slipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Slip{}, payroll.ErrSlipAlreadyPublished
		}
		return payroll.Slip{}, fmt.Errorf("upsert payroll slip: %w", err)
	}

	return r.GetByID(ctx, slipID)
}

func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Slip, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSlip(q.QueryRow(ctx, `
		SELECT `+slipColumns+`
		FROM payroll_slips s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Slip{}, payroll.ErrSlipNotFound
		}
		return payroll.Slip{}, fmt.Errorf("get payroll slip: %w", err)
	}
	return s, nil
}

func (r *payrollRepositoryImpl) List(ctx context.Context, filter payroll.SlipFilter) ([]payroll.Slip, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "TRUE"
	args := []any{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND s.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Year != nil {
		where += fmt.Sprintf(" AND s.period_year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Month != nil {
		where += fmt.Sprintf(" AND s.period_month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		where += fmt.Sprintf(" AND s.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM payroll_slips s WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payroll slips: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payroll_slips s
		JOIN employees e ON e.id = s.employee_id
		WHERE %s
		ORDER BY s.period_year DESC, s.period_month DESC, e.full_name ASC
		LIMIT $%d OFFSET $%d
	`, slipColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, pageOffset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payroll slips: %w", err)
	}
	defer rows.Close()

	slips := []payroll.Slip{}
	for rows.Next() {
		s, err := scanSlip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payroll slip: %w", err)
		}
		slips = append(slips, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payroll slips: %w", err)
	}
	return slips, total, nil
}

func (r *payrollRepositoryImpl) Publish(ctx context.Context, id string, at time.Time) (payroll.Slip, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_slips SET status = 'published', published_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
	`, id, at)
	if err != nil {
		return payroll.Slip{}, fmt.Errorf("publish payroll slip: %w", err)
	}

	s, err := r.GetByID(ctx, id)
	if err != nil {
		return payroll.Slip{}, err
	}
	if tag.RowsAffected() == 0 {
		return s, payroll.ErrSlipAlreadyPublished
	}
	return s, nil
}

func (r *payrollRepositoryImpl) SummarizeAttendance(ctx context.Context, employeeID string, from, to time.Time) (payroll.AttendanceSummary, error) {
	q := GetQuerier(ctx, r.db)

	var s payroll.AttendanceSummary
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'present'),
			COUNT(*) FILTER (WHERE status = 'late'),
			COUNT(*) FILTER (WHERE status = 'leave'),
			COUNT(*) FILTER (WHERE status = 'absent')
		FROM attendances
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
	`, employeeID, from, to).Scan(&s.Present, &s.Late, &s.Leave, &s.Absent)
	if err != nil {
		return payroll.AttendanceSummary{}, fmt.Errorf("summarize attendance: %w", err)
	}
	return s, nil
}
