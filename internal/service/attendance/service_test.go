package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var jakarta = time.FixedZone("WIB", 7*60*60)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memAttendance struct {
	records map[string]attendance.Record
	seq     int
	// raceOnCreate simulates another request inserting first.
	raceOnCreate *attendance.Record
	completeErr  error
}

func newMemAttendance() *memAttendance {
	return &memAttendance{records: map[string]attendance.Record{}}
}

func key(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(time.DateOnly)
}

func (m *memAttendance) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	return m.GetByEmployeeAndDate(ctx, employeeID, date)
}

func (m *memAttendance) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	r, ok := m.records[key(employeeID, date)]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return r, nil
}

func (m *memAttendance) CreateClockIn(_ context.Context, r attendance.Record) (attendance.Record, bool, error) {
	if m.raceOnCreate != nil {
		winner := *m.raceOnCreate
		m.raceOnCreate = nil
		m.records[key(winner.EmployeeID, winner.Date)] = winner
	}
	if existing, ok := m.records[key(r.EmployeeID, r.Date)]; ok {
		return existing, false, nil
	}
	m.seq++
	r.ID = fmt.Sprintf("att-%d", m.seq)
	m.records[key(r.EmployeeID, r.Date)] = r
	return r, true, nil
}

func (m *memAttendance) CompleteClockOut(_ context.Context, id string, at time.Time, point *geo.Point, photo *string) (attendance.Record, error) {
	if m.completeErr != nil {
		return attendance.Record{}, m.completeErr
	}
	for k, r := range m.records {
		if r.ID != id {
			continue
		}
		if r.ClockOut != nil || r.ClockIn == nil {
			return attendance.Record{}, attendance.ErrAlreadyCompleted
		}
		r.ClockOut, r.ClockOutLocation, r.ClockOutPhoto = &at, point, photo
		m.records[k] = r
		return r, nil
	}
	return attendance.Record{}, attendance.ErrAttendanceNotFound
}

func (m *memAttendance) GetByID(_ context.Context, id string) (attendance.Record, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return attendance.Record{}, attendance.ErrAttendanceNotFound
}

func (m *memAttendance) List(_ context.Context, f attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	var out []attendance.Record
	for _, r := range m.records {
		if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (m *memAttendance) MarkMissing(_ context.Context, ids []string, date time.Time, status attendance.Status) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := m.records[key(id, date)]; ok {
			continue
		}
		m.seq++
		m.records[key(id, date)] = attendance.Record{ID: fmt.Sprintf("att-%d", m.seq), EmployeeID: id, Date: date, Status: status}
		n++
	}
	return n, nil
}

type fixedProfiles map[string]employee.AttendanceProfile

func (f fixedProfiles) AttendanceProfile(_ context.Context, id string) (employee.AttendanceProfile, error) {
	p, ok := f[id]
	if !ok {
		return employee.AttendanceProfile{}, employee.ErrEmployeeNotFound
	}
	return p, nil
}

type activeEmployees struct {
	employee.EmployeeRepository
	ids []string
}

func (a activeEmployees) ListActiveIDs(context.Context, time.Time) ([]string, error) {
	return a.ids, nil
}

type leaveDays struct {
	leave.LeaveRepository
	onLeave []string
}

func (l leaveDays) ApprovedEmployeeIDsOn(context.Context, time.Time) ([]string, error) {
	return l.onLeave, nil
}

type memPhotos struct {
	saved   []string
	deleted []string
	fail    bool
}

func (m *memPhotos) SavePhoto(_ context.Context, employeeID string, date time.Time, kind string, payload *string) (*string, error) {
	if payload == nil || *payload == "" {
		return nil, nil
	}
	if m.fail {
		return nil, errors.New("disk full")
	}
	k := fmt.Sprintf("%s/%s/%s/%d.photo", kind, date.Format(time.DateOnly), employeeID, len(m.saved))
	m.saved = append(m.saved, k)
	return &k, nil
}

func (m *memPhotos) DeleteFile(_ context.Context, k string) error {
	m.deleted = append(m.deleted, k)
	return nil
}

func (m *memPhotos) GetFileURL(_ context.Context, k string) (string, error) {
	return "/files/" + k, nil
}

type fixture struct {
	repo   *memAttendance
	photos *memPhotos
	clk    *clock.Fixed
	svc    *AttendanceServiceImpl
}

var hq = location.PermittedLocation{ID: "loc-hq", Name: "HQ", Latitude: -6.2000, Longitude: 106.8167, RadiusMeters: 100}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	enforcer, err := rbac.NewDefaultEnforcer()
	require.NoError(t, err)

	f := &fixture{
		repo:   newMemAttendance(),
		photos: &memPhotos{},
		clk:    &clock.Fixed{T: time.Date(2026, 3, 2, 8, 30, 0, 0, jakarta)},
	}
	profiles := fixedProfiles{
		"emp-geo":    {EmployeeID: "emp-geo", Locations: []location.PermittedLocation{hq}},
		"emp-bypass": {EmployeeID: "emp-bypass", BypassLocation: true},
		"emp-none":   {EmployeeID: "emp-none"},
	}
	f.svc = NewAttendanceService(
		passthroughTx{}, f.repo, profiles,
		activeEmployees{ids: []string{"emp-geo", "emp-bypass", "emp-none"}},
		leaveDays{onLeave: []string{"emp-none"}},
		f.photos, enforcer, f.clk,
	).(*AttendanceServiceImpl)
	return f
}

func (f *fixture) at(hour, minute int) {
	f.clk.T = time.Date(2026, 3, 2, hour, minute, 0, 0, jakarta)
}

func sessionFor(employeeID string, role user.Role) context.Context {
	return auth.WithSession(context.Background(), auth.Session{
		UserID: "user-" + employeeID, EmployeeID: employeeID, Role: role,
	})
}

func point(lat, lng float64) *geo.Point { return &geo.Point{Lat: lat, Lng: lng} }

func TestSubmit_Scenarios(t *testing.T) {
	f := newFixture(t)
	ctx := sessionFor("emp-geo", user.RoleEmployee)

	// A: on-site at 08:30 is a present clock-in.
	photo := "base64-selfie"
	rec, err := f.svc.Submit(ctx, attendance.SubmitRequest{Location: point(-6.2000, 106.8167), Photo: &photo})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Equal(t, "2026-03-02", rec.Date)
	require.NotNil(t, rec.ClockIn)
	assert.Nil(t, rec.ClockOut)
	require.NotNil(t, rec.ClockInPhoto)
	assert.Contains(t, *rec.ClockInPhoto, "clock-in/2026-03-02/emp-geo/")

	// B: roughly 500 m north is rejected and writes nothing.
	other := newFixture(t)
	other.at(8, 31)
	_, err = other.svc.Submit(ctx, attendance.SubmitRequest{Location: point(-6.1955, 106.8167)})
	assert.ErrorIs(t, err, attendance.ErrOutsideGeofence)
	assert.Empty(t, other.repo.records)

	// C: a second valid point at 17:00 completes the record; status is kept.
	f.at(17, 0)
	rec, err = f.svc.Submit(ctx, attendance.SubmitRequest{Location: point(-6.2001, 106.8168)})
	require.NoError(t, err)
	require.NotNil(t, rec.ClockOut)
	assert.Equal(t, 17, rec.ClockOut.Hour())
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	require.NotNil(t, rec.ClockOutLocation)
	assert.InDelta(t, -6.2001, rec.ClockOutLocation.Lat, 1e-9)

	// D: a third submission is rejected.
	f.at(17, 5)
	_, err = f.svc.Submit(ctx, attendance.SubmitRequest{Location: point(-6.2000, 106.8167)})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)
	assert.Len(t, f.repo.records, 1)
}

func TestSubmit_BypassLate(t *testing.T) {
	// E: bypass without a location at 10:15 is a late clock-in.
	f := newFixture(t)
	f.at(10, 15)

	rec, err := f.svc.Submit(sessionFor("emp-bypass", user.RoleEmployee), attendance.SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, rec.Status)
	assert.Nil(t, rec.ClockInLocation)
}

func TestSubmit_BypassInvalidPointIsDropped(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Submit(sessionFor("emp-bypass", user.RoleEmployee), attendance.SubmitRequest{Location: point(91, 200)})
	require.NoError(t, err)
	require.NotNil(t, rec.ClockIn)
	assert.Nil(t, rec.ClockInLocation)
	assert.Len(t, f.repo.records, 1)
}

func TestSubmit_BypassMalformedLocation(t *testing.T) {
	f := newFixture(t)

	var req attendance.SubmitRequest
	require.NoError(t, json.Unmarshal([]byte(`{"location":{"lat":"north"}}`), &req))
	require.True(t, req.Malformed)

	rec, err := f.svc.Submit(sessionFor("emp-bypass", user.RoleEmployee), req)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Nil(t, rec.ClockInLocation)
}

func TestSubmit_BypassKeepsValidPoint(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Submit(sessionFor("emp-bypass", user.RoleEmployee), attendance.SubmitRequest{Location: point(-7.25, 112.75)})
	require.NoError(t, err)
	require.NotNil(t, rec.ClockInLocation)
	assert.InDelta(t, -7.25, rec.ClockInLocation.Lat, 1e-9)
}

func TestSubmit_LateBoundary(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         attendance.Status
	}{
		{8, 59, attendance.StatusPresent},
		{9, 0, attendance.StatusPresent},
		{9, 59, attendance.StatusPresent},
		{10, 0, attendance.StatusLate},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%02d:%02d", tt.hour, tt.minute), func(t *testing.T) {
			f := newFixture(t)
			f.at(tt.hour, tt.minute)
			rec, err := f.svc.Submit(sessionFor("emp-bypass", user.RoleEmployee), attendance.SubmitRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Status)
		})
	}
}

func TestSubmit_PolicyFailures(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(sessionFor("emp-geo", user.RoleEmployee), attendance.SubmitRequest{})
	assert.ErrorIs(t, err, attendance.ErrLocationRequired)

	_, err = f.svc.Submit(sessionFor("emp-none", user.RoleEmployee), attendance.SubmitRequest{Location: point(-6.2, 106.8167)})
	assert.ErrorIs(t, err, attendance.ErrNoLocationConfigured)

	_, err = f.svc.Submit(sessionFor("emp-geo", user.RoleEmployee), attendance.SubmitRequest{Location: point(91, 0)})
	assert.ErrorIs(t, err, attendance.ErrLocationRequired)

	_, err = f.svc.Submit(sessionFor("emp-geo", user.RoleEmployee), attendance.SubmitRequest{Malformed: true})
	assert.ErrorIs(t, err, attendance.ErrLocationRequired)

	_, err = f.svc.Submit(sessionFor("emp-ghost", user.RoleEmployee), attendance.SubmitRequest{})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = f.svc.Submit(context.Background(), attendance.SubmitRequest{})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	assert.Empty(t, f.repo.records)
}

func TestSubmit_ConcurrentClockInBecomesClockOut(t *testing.T) {
	f := newFixture(t)
	f.at(8, 0)
	earlier := time.Date(2026, 3, 2, 7, 59, 0, 0, jakarta)
	f.repo.raceOnCreate = &attendance.Record{
		ID: "att-winner", EmployeeID: "emp-bypass", Date: clock.DateOf(earlier),
		ClockIn: &earlier, Status: attendance.StatusPresent,
	}

	rec, err := f.svc.Submit(sessionFor("emp-bypass", user.RoleEmployee), attendance.SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, "att-winner", rec.ID)
	require.NotNil(t, rec.ClockOut)
	assert.Len(t, f.repo.records, 1)
}

func TestSubmit_FailedWriteDiscardsPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := sessionFor("emp-bypass", user.RoleEmployee)
	done := time.Date(2026, 3, 2, 17, 0, 0, 0, jakarta)
	in := time.Date(2026, 3, 2, 8, 0, 0, 0, jakarta)
	f.repo.records[key("emp-bypass", clock.DateOf(in))] = attendance.Record{
		ID: "att-x", EmployeeID: "emp-bypass", Date: clock.DateOf(in), ClockIn: &in, ClockOut: &done,
	}

	photo := "selfie"
	_, err := f.svc.Submit(ctx, attendance.SubmitRequest{Photo: &photo})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)
	assert.Empty(t, f.photos.saved)

	f2 := newFixture(t)
	f2.photos.fail = true
	_, err = f2.svc.Submit(ctx, attendance.SubmitRequest{Photo: &photo})
	assert.Error(t, err)
	assert.Empty(t, f2.repo.records)

	// A clock-out that loses the race keeps no photo behind.
	f3 := newFixture(t)
	f3.repo.records[key("emp-bypass", clock.DateOf(in))] = attendance.Record{
		ID: "att-y", EmployeeID: "emp-bypass", Date: clock.DateOf(in), ClockIn: &in,
	}
	f3.repo.completeErr = attendance.ErrAlreadyCompleted
	_, err = f3.svc.Submit(ctx, attendance.SubmitRequest{Photo: &photo})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)
	require.Len(t, f3.photos.saved, 1)
	assert.Equal(t, f3.photos.saved, f3.photos.deleted)
}

func TestToday(t *testing.T) {
	f := newFixture(t)
	ctx := sessionFor("emp-bypass", user.RoleEmployee)

	today, err := f.svc.Today(ctx)
	require.NoError(t, err)
	assert.True(t, today.CanClockIn)
	assert.Nil(t, today.Record)

	_, err = f.svc.Submit(ctx, attendance.SubmitRequest{})
	require.NoError(t, err)

	today, err = f.svc.Today(ctx)
	require.NoError(t, err)
	assert.False(t, today.CanClockIn)
	assert.True(t, today.CanClockOut)
}

func TestListAndGet_Scope(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(sessionFor("emp-bypass", user.RoleEmployee), attendance.SubmitRequest{})
	require.NoError(t, err)
	_, err = f.svc.Submit(sessionFor("emp-geo", user.RoleEmployee), attendance.SubmitRequest{Location: point(-6.2, 106.8167)})
	require.NoError(t, err)

	own, err := f.svc.List(sessionFor("emp-geo", user.RoleEmployee), attendance.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, own.Records, 1)
	assert.Equal(t, "emp-geo", own.Records[0].EmployeeID)

	other := "emp-bypass"
	_, err = f.svc.List(sessionFor("emp-geo", user.RoleEmployee), attendance.AttendanceFilter{EmployeeID: &other})
	assert.ErrorIs(t, err, attendance.ErrForbiddenEmployee)

	all, err := f.svc.List(sessionFor("emp-mgr", user.RoleManager), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Records, 2)
	assert.EqualValues(t, 2, all.TotalCount)

	filtered, err := f.svc.List(sessionFor("emp-mgr", user.RoleManager), attendance.AttendanceFilter{EmployeeID: &other})
	require.NoError(t, err)
	assert.Len(t, filtered.Records, 1)

	_, err = f.svc.Get(sessionFor("emp-geo", user.RoleEmployee), filtered.Records[0].ID)
	assert.ErrorIs(t, err, attendance.ErrForbiddenEmployee)
	got, err := f.svc.Get(sessionFor("emp-admin", user.RoleAdmin), filtered.Records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "emp-bypass", got.EmployeeID)
}

func TestMarkAbsent(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(sessionFor("emp-bypass", user.RoleEmployee), attendance.SubmitRequest{})
	require.NoError(t, err)

	n, err := f.svc.MarkAbsent(context.Background(), f.clk.T)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	date := clock.DateOf(f.clk.T)
	assert.Equal(t, attendance.StatusAbsent, f.repo.records[key("emp-geo", date)].Status)
	assert.Equal(t, attendance.StatusLeave, f.repo.records[key("emp-none", date)].Status)
	assert.Equal(t, attendance.StatusPresent, f.repo.records[key("emp-bypass", date)].Status)

	n, err = f.svc.MarkAbsent(context.Background(), f.clk.T)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(sessionFor("emp-bypass", user.RoleEmployee), attendance.SubmitRequest{})
	require.NoError(t, err)

	req := attendance.ExportRequest{From: "2026-03-01", To: "2026-03-31"}
	var buf bytes.Buffer
	assert.ErrorIs(t, f.svc.Export(sessionFor("emp-geo", user.RoleEmployee), req, &buf), attendance.ErrForbiddenEmployee)

	require.NoError(t, f.svc.Export(sessionFor("emp-admin", user.RoleAdmin), req, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2026-03-02", rows[1][0])
	assert.Equal(t, "present", rows[1][3])
}
