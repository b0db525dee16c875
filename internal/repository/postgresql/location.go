package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type locationRepositoryImpl struct {
	db *database.DB
}

func NewLocationRepository(db *database.DB) location.LocationRepository {
	return &locationRepositoryImpl{db: db}
}

const locationColumns = `l.id, l.name, l.address, l.latitude, l.longitude, l.radius_meters, l.created_at, l.updated_at`

func scanLocation(row pgx.Row) (location.PermittedLocation, error) {
	var l location.PermittedLocation
	err := row.Scan(&l.ID, &l.Name, &l.Address, &l.Latitude, &l.Longitude, &l.RadiusMeters, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *locationRepositoryImpl) Create(ctx context.Context, l location.PermittedLocation) (location.PermittedLocation, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return location.PermittedLocation{}, err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO permitted_locations (id, name, address, latitude, longitude, radius_meters)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, id, l.Name, l.Address, l.Latitude, l.Longitude, l.RadiusMeters).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return location.PermittedLocation{}, location.ErrLocationNameExists
		}
		return location.PermittedLocation{}, fmt.Errorf("create location: %w", err)
	}
	return l, nil
}

func (r *locationRepositoryImpl) GetByID(ctx context.Context, id string) (location.PermittedLocation, error) {
	q := GetQuerier(ctx, r.db)

	l, err := scanLocation(q.QueryRow(ctx, `SELECT `+locationColumns+` FROM permitted_locations l WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.PermittedLocation{}, location.ErrLocationNotFound
		}
		return location.PermittedLocation{}, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

func (r *locationRepositoryImpl) List(ctx context.Context) ([]location.PermittedLocation, error) {
	return r.list(ctx, `SELECT `+locationColumns+` FROM permitted_locations l ORDER BY l.name`)
}

func (r *locationRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]location.PermittedLocation, error) {
	return r.list(ctx, `
		SELECT `+locationColumns+`
		FROM permitted_locations l
		JOIN employee_locations el ON el.location_id = l.id
		WHERE el.employee_id = $1
		ORDER BY l.name
	`, employeeID)
}

func (r *locationRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]location.PermittedLocation, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	locations := []location.PermittedLocation{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (r *locationRepositoryImpl) Update(ctx context.Context, l location.PermittedLocation) (location.PermittedLocation, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		UPDATE permitted_locations
		SET name = $2, address = $3, latitude = $4, longitude = $5, radius_meters = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, l.ID, l.Name, l.Address, l.Latitude, l.Longitude, l.RadiusMeters).Scan(&l.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return location.PermittedLocation{}, location.ErrLocationNotFound
		case isUniqueViolation(err):
			return location.PermittedLocation{}, location.ErrLocationNameExists
		}
		return location.PermittedLocation{}, fmt.Errorf("update location: %w", err)
	}
	return l, nil
}

func (r *locationRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM permitted_locations WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return location.ErrLocationInUse
		}
		return fmt.Errorf("delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return location.ErrLocationNotFound
	}
	return nil
}

// ReplaceEmployeeLocations must run inside a transaction to be atomic.
func (r *locationRepositoryImpl) ReplaceEmployeeLocations(ctx context.Context, employeeID string, locationIDs []string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM employee_locations WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("clear employee locations: %w", err)
	}
	if len(locationIDs) == 0 {
		return nil
	}

	_, err := q.Exec(ctx, `
		INSERT INTO employee_locations (employee_id, location_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, employeeID, locationIDs)
	if err != nil {
		if isForeignKeyViolation(err) {
			return employee.ErrUnknownLocation
		}
		return fmt.Errorf("assign employee locations: %w", err)
	}
	return nil
}
