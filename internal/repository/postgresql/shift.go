package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

func (r *shiftRepositoryImpl) Create(ctx context.Context, s shift.WorkShift) (shift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return shift.WorkShift{}, err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO work_shifts (id, name, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, id, s.Name, s.StartTime, s.EndTime).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return shift.WorkShift{}, shift.ErrShiftNameExists
		}
		return shift.WorkShift{}, fmt.Errorf("create shift: %w", err)
	}
	return s, nil
}

func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id string) (shift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	var s shift.WorkShift
	err := q.QueryRow(ctx, `
		SELECT id, name, start_time, end_time, created_at, updated_at
		FROM work_shifts WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.WorkShift{}, shift.ErrShiftNotFound
		}
		return shift.WorkShift{}, fmt.Errorf("get shift: %w", err)
	}
	return s, nil
}

func (r *shiftRepositoryImpl) List(ctx context.Context) ([]shift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, start_time, end_time, created_at, updated_at
		FROM work_shifts ORDER BY start_time, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	shifts := []shift.WorkShift{}
	for rows.Next() {
		var s shift.WorkShift
		if err := rows.Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

func (r *shiftRepositoryImpl) Update(ctx context.Context, s shift.WorkShift) (shift.WorkShift, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		UPDATE work_shifts SET name = $2, start_time = $3, end_time = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, s.ID, s.Name, s.StartTime, s.EndTime).Scan(&s.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return shift.WorkShift{}, shift.ErrShiftNotFound
		case isUniqueViolation(err):
			return shift.WorkShift{}, shift.ErrShiftNameExists
		}
		return shift.WorkShift{}, fmt.Errorf("update shift: %w", err)
	}
	return s, nil
}

func (r *shiftRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM work_shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}
	return nil
}
