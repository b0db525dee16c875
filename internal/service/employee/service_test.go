package employee

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memStore struct {
	users     map[string]user.User
	employees map[string]employee.Employee
	locations map[string]location.PermittedLocation
	assigned  map[string][]string
	seq       int
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]user.User{},
		employees: map[string]employee.Employee{},
		locations: map[string]location.PermittedLocation{},
		assigned:  map[string][]string{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

type memUsers struct{ *memStore }

func (m memUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m memUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (m memUsers) Create(_ context.Context, u user.User) (user.User, error) {
	u.ID = m.nextID("user")
	m.users[u.ID] = u
	return u, nil
}

func (m memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m memUsers) LinkGoogleAccount(context.Context, string, string) (user.User, error) {
	return user.User{}, nil
}

func (m memUsers) UpdateRole(_ context.Context, id string, role user.Role) error {
	u := m.users[id]
	u.Role = role
	m.users[id] = u
	return nil
}

func (m memUsers) UpdatePassword(context.Context, string, string) error { return nil }

func (m memUsers) SetActive(_ context.Context, id string, active bool) error {
	u := m.users[id]
	u.IsActive = active
	m.users[id] = u
	return nil
}

type memEmployees struct{ *memStore }

func (m memEmployees) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	e.ID = m.nextID("emp")
	m.employees[e.ID] = e
	return e, nil
}

func (m memEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	e.Email, e.Role = m.users[e.UserID].Email, m.users[e.UserID].Role
	return e, nil
}

func (m memEmployees) GetByUserID(_ context.Context, userID string) (employee.Employee, error) {
	for _, e := range m.employees {
		if e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m memEmployees) List(_ context.Context, _ employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	var out []employee.Employee
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (m memEmployees) ListActiveIDs(context.Context, time.Time) ([]string, error) { return nil, nil }

func (m memEmployees) Update(_ context.Context, e employee.Employee) (employee.Employee, error) {
	m.employees[e.ID] = e
	return e, nil
}

func (m memEmployees) SetBypassLocation(_ context.Context, id string, bypass bool) error {
	e, ok := m.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.BypassLocation = bypass
	m.employees[id] = e
	return nil
}

func (m memEmployees) SetActive(_ context.Context, id string, active bool) error {
	e := m.employees[id]
	e.IsActive = active
	m.employees[id] = e
	return nil
}

func (m memEmployees) AddUsedLeaveDays(context.Context, string, int) error { return nil }

func (m memEmployees) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, e := range m.employees {
		if e.EmployeeCode == code {
			return true, nil
		}
	}
	return false, nil
}

type memLocations struct{ *memStore }

func (m memLocations) Create(_ context.Context, l location.PermittedLocation) (location.PermittedLocation, error) {
	l.ID = m.nextID("loc")
	m.locations[l.ID] = l
	return l, nil
}

func (m memLocations) GetByID(_ context.Context, id string) (location.PermittedLocation, error) {
	l, ok := m.locations[id]
	if !ok {
		return location.PermittedLocation{}, location.ErrLocationNotFound
	}
	return l, nil
}

func (m memLocations) List(context.Context) ([]location.PermittedLocation, error) { return nil, nil }

func (m memLocations) Update(_ context.Context, l location.PermittedLocation) (location.PermittedLocation, error) {
	return l, nil
}

func (m memLocations) Delete(context.Context, string) error { return nil }

func (m memLocations) ListByEmployee(_ context.Context, employeeID string) ([]location.PermittedLocation, error) {
	var out []location.PermittedLocation
	for _, id := range m.assigned[employeeID] {
		out = append(out, m.locations[id])
	}
	return out, nil
}

func (m memLocations) ReplaceEmployeeLocations(_ context.Context, employeeID string, ids []string) error {
	for _, id := range ids {
		if _, ok := m.locations[id]; !ok {
			return employee.ErrUnknownLocation
		}
	}
	m.assigned[employeeID] = ids
	return nil
}

func newTestService() (employee.EmployeeService, *memStore) {
	store := newMemStore()
	return NewEmployeeService(passthroughTx{}, memEmployees{store}, memUsers{store}, memLocations{store}), store
}

func validCreate() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		EmployeeCode: "E-001",
		FullName:     "Ana Putri",
		Email:        "Ana@Example.com",
		Password:     "password123",
		Role:         "employee",
		BaseSalary:   "5000000",
		HireDate:     "2024-01-15",
	}
}

func adminCtx() context.Context {
	return auth.WithSession(context.Background(), auth.Session{
		UserID: "admin-user", EmployeeID: "admin-emp", Role: user.RoleAdmin,
	})
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := adminCtx()
	svc, store := newTestService()
	hq, _ := memLocations{store}.Create(ctx, location.PermittedLocation{Name: "HQ", RadiusMeters: 100})

	req := validCreate()
	req.LocationIDs = []string{hq.ID, hq.ID}
	resp, err := svc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", resp.Email)
	assert.Equal(t, "employee", resp.Role)
	require.Len(t, resp.Locations, 1)
	assert.Equal(t, "HQ", resp.Locations[0].Name)
	assert.True(t, resp.BaseSalary.Equal(store.employees[resp.ID].BaseSalary))

	u := store.users[resp.UserID]
	require.NotNil(t, u.PasswordHash)
	assert.NotEqual(t, "password123", *u.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		dup := validCreate()
		dup.EmployeeCode = "E-002"
		_, err := svc.Create(ctx, dup)
		assert.ErrorIs(t, err, employee.ErrEmailExists)
	})

	t.Run("duplicate code", func(t *testing.T) {
		dup := validCreate()
		dup.Email = "other@example.com"
		_, err := svc.Create(ctx, dup)
		assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)
	})

	t.Run("unknown location", func(t *testing.T) {
		bad := validCreate()
		bad.Email, bad.EmployeeCode = "third@example.com", "E-003"
		bad.LocationIDs = []string{"nope"}
		_, err := svc.Create(ctx, bad)
		assert.ErrorIs(t, err, employee.ErrUnknownLocation)
	})
}

func TestEmployeeService_AttendanceProfile(t *testing.T) {
	ctx := adminCtx()
	svc, store := newTestService()
	hq, _ := memLocations{store}.Create(ctx, location.PermittedLocation{Name: "HQ", RadiusMeters: 100})

	created, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	profile, err := svc.AttendanceProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Locations)

	_, err = svc.AssignLocations(ctx, employee.AssignLocationsRequest{EmployeeID: created.ID, LocationIDs: []string{hq.ID}})
	require.NoError(t, err)
	profile, err = svc.AttendanceProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, profile.Locations, 1)

	bypass := true
	resp, err := svc.SetBypass(ctx, employee.SetBypassRequest{EmployeeID: created.ID, BypassLocation: &bypass})
	require.NoError(t, err)
	assert.True(t, resp.BypassLocation)

	profile, err = svc.AttendanceProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, profile.BypassLocation)
}

func TestEmployeeService_UpdateRole(t *testing.T) {
	ctx := adminCtx()
	svc, store := newTestService()
	created, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	role := "manager"
	resp, err := svc.Update(ctx, employee.UpdateEmployeeRequest{ID: created.ID, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "manager", resp.Role)
	assert.Equal(t, user.RoleManager, store.users[created.UserID].Role)
}

func TestEmployeeService_Deactivate(t *testing.T) {
	ctx := adminCtx()
	svc, store := newTestService()
	created, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Deactivate(ctx, "admin-emp"), employee.ErrCannotDeactivateSelf)

	require.NoError(t, svc.Deactivate(ctx, created.ID))
	assert.False(t, store.employees[created.ID].IsActive)
	assert.False(t, store.users[created.UserID].IsActive)

	assert.ErrorIs(t, svc.Deactivate(ctx, created.ID), employee.ErrEmployeeAlreadyInactive)
}
