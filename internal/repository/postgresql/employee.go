package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeSelect = `
	SELECT e.id, e.user_id, e.employee_code, e.full_name, u.email, u.role,
		   e.position, e.phone_number, e.shift_id, e.bypass_location, e.base_salary,
		   e.annual_leave_quota, e.used_leave_days, e.hire_date, e.is_active,
		   e.created_at, e.updated_at
	FROM employees e
	JOIN users u ON u.id = e.user_id
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.UserID, &e.EmployeeCode, &e.FullName, &e.Email, &e.Role,
		&e.Position, &e.PhoneNumber, &e.ShiftID, &e.BypassLocation, &e.BaseSalary,
		&e.AnnualLeaveQuota, &e.UsedLeaveDays, &e.HireDate, &e.IsActive,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *employeeRepositoryImpl) getOne(ctx context.Context, where string, arg any) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, employeeSelect+" WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return employee.Employee{}, err
	}

	query := `
		INSERT INTO employees (
			id, user_id, employee_code, full_name, position, phone_number, shift_id,
			bypass_location, base_salary, annual_leave_quota, hire_date, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE)
		RETURNING id, used_leave_days, is_active, created_at, updated_at
	`
	err = q.QueryRow(ctx, query,
		id, e.UserID, e.EmployeeCode, e.FullName, e.Position, e.PhoneNumber, e.ShiftID,
		e.BypassLocation, e.BaseSalary, e.AnnualLeaveQuota, e.HireDate,
	).Scan(&e.ID, &e.UsedLeaveDays, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		case isForeignKeyViolation(err):
			return employee.Employee{}, fmt.Errorf("create employee: unknown shift or user: %w", err)
		}
		return employee.Employee{}, fmt.Errorf("create employee: %w", err)
	}

	return e, nil
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.getOne(ctx, "e.id = $1", id)
}

func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return r.getOne(ctx, "e.user_id = $1", userID)
}

func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "TRUE"
	args := []any{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		where += fmt.Sprintf(" AND (e.full_name ILIKE $%d OR e.employee_code ILIKE $%d OR u.email ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Role != nil && *filter.Role != "" {
		where += fmt.Sprintf(" AND u.role = $%d", argIdx)
		args = append(args, *filter.Role)
		argIdx++
	}
	if filter.IsActive != nil {
		where += fmt.Sprintf(" AND e.is_active = $%d", argIdx)
		args = append(args, *filter.IsActive)
		argIdx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM employees e JOIN users u ON u.id = e.user_id WHERE " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY e.full_name ASC LIMIT $%d OFFSET $%d", employeeSelect, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, pageOffset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate employees: %w", err)
	}

	return employees, total, nil
}

func (r *employeeRepositoryImpl) ListActiveIDs(ctx context.Context, onOrBefore time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM employees WHERE is_active AND hire_date <= $1 ORDER BY id`, onOrBefore)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect active employees: %w", err)
	}
	return ids, nil
}

func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET full_name = $2, position = $3, phone_number = $4, shift_id = $5,
			base_salary = $6, annual_leave_quota = $7, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, e.ID, e.FullName, e.Position, e.PhoneNumber, e.ShiftID, e.BaseSalary, e.AnnualLeaveQuota)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}

	return r.GetByID(ctx, e.ID)
}

func (r *employeeRepositoryImpl) SetBypassLocation(ctx context.Context, id string, bypass bool) error {
	return r.exec(ctx, `UPDATE employees SET bypass_location = $2, updated_at = NOW() WHERE id = $1`, id, bypass)
}

func (r *employeeRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE employees SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
}

func (r *employeeRepositoryImpl) AddUsedLeaveDays(ctx context.Context, id string, days int) error {
	return r.exec(ctx, `UPDATE employees SET used_leave_days = used_leave_days + $2, updated_at = NOW() WHERE id = $1`, id, days)
}

func (r *employeeRepositoryImpl) ExistsByCode(ctx context.Context, code string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE employee_code = $1)`, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check employee code: %w", err)
	}
	return exists, nil
}

func (r *employeeRepositoryImpl) exec(ctx context.Context, query string, id string, arg any) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, query, id, arg)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
