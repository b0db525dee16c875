package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/visit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type visitRepositoryImpl struct {
	db *database.DB
}

func NewVisitRepository(db *database.DB) visit.VisitRepository {
	return &visitRepositoryImpl{db: db}
}

const visitColumns = `
	v.id, v.employee_id, v.visit_date, v.client_name, v.purpose, v.result_notes,
	v.latitude, v.longitude, v.photo, v.status,
	v.decided_by, v.decided_at, v.reject_note, v.created_at, v.updated_at, e.full_name
`

func scanVisit(row pgx.Row) (visit.VisitReport, error) {
	var v visit.VisitReport
	var lat, lng *float64
	err := row.Scan(
		&v.ID, &v.EmployeeID, &v.VisitDate, &v.ClientName, &v.Purpose, &v.ResultNotes,
		&lat, &lng, &v.Photo, &v.Status,
		&v.DecidedBy, &v.DecidedAt, &v.RejectNote, &v.CreatedAt, &v.UpdatedAt, &v.EmployeeName,
	)
	v.Location = toPoint(lat, lng)
	return v, err
}

func (r *visitRepositoryImpl) Create(ctx context.Context, v visit.VisitReport) (visit.VisitReport, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return visit.VisitReport{}, err
	}
	lat, lng := fromPoint(v.Location)

	err = q.QueryRow(ctx, `
		INSERT INTO visit_reports (
			id, employee_id, visit_date, client_name, purpose, result_notes, latitude, longitude, photo, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, id, v.EmployeeID, v.VisitDate, v.ClientName, v.Purpose, v.ResultNotes, lat, lng, v.Photo, v.Status,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return visit.VisitReport{}, fmt.Errorf("create visit report: %w", err)
	}
	return v, nil
}

func (r *visitRepositoryImpl) GetByID(ctx context.Context, id string) (visit.VisitReport, error) {
	q := GetQuerier(ctx, r.db)

	v, err := scanVisit(q.QueryRow(ctx, `
		SELECT `+visitColumns+`
		FROM visit_reports v
		JOIN employees e ON e.id = v.employee_id
		WHERE v.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return visit.VisitReport{}, visit.ErrVisitNotFound
		}
		return visit.VisitReport{}, fmt.Errorf("get visit report: %w", err)
	}
	return v, nil
}

func (r *visitRepositoryImpl) List(ctx context.Context, filter visit.VisitFilter) ([]visit.VisitReport, int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args, argIdx := approvalWhere("v", filter.EmployeeID, filter.Status)

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM visit_reports v WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count visit reports: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM visit_reports v
		JOIN employees e ON e.id = v.employee_id
		WHERE %s
		ORDER BY v.visit_date DESC, v.created_at DESC
		LIMIT $%d OFFSET $%d
	`, visitColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, pageOffset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list visit reports: %w", err)
	}
	defer rows.Close()

	reports := []visit.VisitReport{}
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan visit report: %w", err)
		}
		reports = append(reports, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate visit reports: %w", err)
	}
	return reports, total, nil
}

func (r *visitRepositoryImpl) Decide(ctx context.Context, id string, d approval.Decision) (visit.VisitReport, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, decideQuery("visit_reports"), id, d.Status, d.DecidedBy, d.DecidedAt, d.RejectNote)
	if err != nil {
		return visit.VisitReport{}, fmt.Errorf("decide visit report: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return visit.VisitReport{}, err
	}
	if tag.RowsAffected() == 0 {
		return current, approval.ErrAlreadyProcessed
	}
	return current, nil
}
