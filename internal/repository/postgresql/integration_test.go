//go:build integration

package postgresql_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupDatabase(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container-based test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "hris_attendance_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/hris_attendance_test?sslmode=disable", host, port.Port())
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, postgresql.Migrate(ctx, db))
	// Second run must be a no-op.
	require.NoError(t, postgresql.Migrate(ctx, db))
	return db
}

func seedEmployee(t *testing.T, ctx context.Context, db *database.DB, code string) employee.Employee {
	t.Helper()
	hash := "x"
	u, err := postgresql.NewUserRepository(db).Create(ctx, user.User{
		Email:        code + "@example.com",
		PasswordHash: &hash,
		Role:         user.RoleEmployee,
		IsActive:     true,
	})
	require.NoError(t, err)

	e, err := postgresql.NewEmployeeRepository(db).Create(ctx, employee.Employee{
		UserID:           u.ID,
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		BaseSalary:       decimal.NewFromInt(5000000),
		AnnualLeaveQuota: 12,
		HireDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return e
}

func TestAttendanceRepository_AtomicClockInOut(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	emp := seedEmployee(t, ctx, db, "E001")

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	in := time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)
	point := &geo.Point{Lat: -6.2, Lng: 106.8167}

	rec, created, err := repo.CreateClockIn(ctx, attendance.Record{
		EmployeeID: emp.ID, Date: date, ClockIn: &in, ClockInLocation: point, Status: attendance.StatusPresent,
	})
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, point, rec.ClockInLocation)

	_, created, err = repo.CreateClockIn(ctx, attendance.Record{
		EmployeeID: emp.ID, Date: date, ClockIn: &in, Status: attendance.StatusLate,
	})
	require.NoError(t, err)
	assert.False(t, created, "second insert for the same day must be a no-op")

	out := in.Add(9 * time.Hour)
	done, err := repo.CompleteClockOut(ctx, rec.ID, out, point, nil)
	require.NoError(t, err)
	require.NotNil(t, done.ClockOut)
	assert.Equal(t, attendance.StatusPresent, done.Status)

	_, err = repo.CompleteClockOut(ctx, rec.ID, out.Add(time.Minute), point, nil)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)

	other := seedEmployee(t, ctx, db, "E002")
	n, err := repo.MarkMissing(ctx, []string{emp.ID, other.ID}, date, attendance.StatusAbsent)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLocationRepository_AssignAndInUse(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()
	locations := postgresql.NewLocationRepository(db)
	emp := seedEmployee(t, ctx, db, "E010")

	hq, err := locations.Create(ctx, location.PermittedLocation{Name: "HQ", Latitude: -6.2, Longitude: 106.8167, RadiusMeters: 100})
	require.NoError(t, err)

	_, err = locations.Create(ctx, location.PermittedLocation{Name: "HQ", Latitude: 0, Longitude: 0, RadiusMeters: 1})
	assert.ErrorIs(t, err, location.ErrLocationNameExists)

	require.NoError(t, locations.ReplaceEmployeeLocations(ctx, emp.ID, []string{hq.ID}))
	assigned, err := locations.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, hq.ID, assigned[0].ID)

	assert.ErrorIs(t, locations.Delete(ctx, hq.ID), location.ErrLocationInUse)
}

func TestLeaveRepository_DecideOnlyOnce(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRepository(db)
	emp := seedEmployee(t, ctx, db, "E020")

	req, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID: emp.ID,
		LeaveType:  leave.LeaveTypeAnnual,
		StartDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Reason:     "family",
		Status:     approval.StatusPending,
	})
	require.NoError(t, err)

	now := time.Now()
	decided, err := repo.Decide(ctx, req.ID, approval.Approve(emp.ID, now))
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, decided.Status)

	_, err = repo.Decide(ctx, req.ID, approval.Reject(emp.ID, now, "late"))
	assert.ErrorIs(t, err, approval.ErrAlreadyProcessed)

	ids, err := repo.ApprovedEmployeeIDsOn(ctx, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{emp.ID}, ids)
}
