package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/news"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/visit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/master"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAttendanceService struct {
	attendance.AttendanceService
	err      error
	calls    int
	sessions []auth.Session
	requests []attendance.SubmitRequest
}

func (s *stubAttendanceService) Submit(ctx context.Context, req attendance.SubmitRequest) (attendance.RecordResponse, error) {
	s.calls++
	s.requests = append(s.requests, req)
	if session, err := auth.SessionFromContext(ctx); err == nil {
		s.sessions = append(s.sessions, session)
	}
	if s.err != nil {
		return attendance.RecordResponse{}, s.err
	}
	in := time.Date(2025, 3, 3, 8, 30, 0, 0, time.UTC)
	return attendance.RecordResponse{
		ID:              "att-1",
		EmployeeID:      "emp-1",
		Date:            "2025-03-03",
		ClockIn:         &in,
		ClockInLocation: req.Location,
		Status:          attendance.StatusPresent,
	}, nil
}

func (s *stubAttendanceService) List(_ context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	return attendance.ListAttendanceResponse{
		TotalCount: 1,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: 1,
		Records:    []attendance.RecordResponse{{ID: "att-1", EmployeeID: "emp-1", Date: "2025-03-03", Status: attendance.StatusLate}},
	}, nil
}

func (s *stubAttendanceService) Export(_ context.Context, _ attendance.ExportRequest, w io.Writer) error {
	_, err := w.Write([]byte("PK\x03\x04"))
	return err
}

type stubLeaveService struct {
	leave.LeaveService
	approved []string
}

func (s *stubLeaveService) Approve(_ context.Context, id string) (leave.LeaveResponse, error) {
	s.approved = append(s.approved, id)
	return leave.LeaveResponse{ID: id, EmployeeID: "emp-2"}, nil
}

type stubNotificationService struct {
	notification.Service
}

type routerFixture struct {
	router     http.Handler
	jwt        jwt.Service
	attendance *stubAttendanceService
	leave      *stubLeaveService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	enforcer, err := rbac.NewDefaultEnforcer()
	require.NoError(t, err)

	jwtService := newTestJWT()
	att := &stubAttendanceService{}
	lv := &stubLeaveService{}

	handlers := Handlers{
		Auth:         NewAuthHandler(jwtService, &stubAuthService{}, nil, "", false),
		Attendance:   NewAttendanceHandler(att),
		Employee:     NewEmployeeHandler(struct{ employee.EmployeeService }{}),
		Master:       NewMasterHandler(struct{ master.MasterService }{}),
		Leave:        NewLeaveHandler(lv),
		Overtime:     NewOvertimeHandler(struct{ overtime.OvertimeService }{}),
		Visit:        NewVisitHandler(struct{ visit.VisitService }{}),
		Payroll:      NewPayrollHandler(struct{ payroll.PayrollService }{}),
		News:         NewNewsHandler(struct{ news.NewsService }{}),
		Notification: NewNotificationHandler(&stubNotificationService{}, jwtService),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(RouterOptions{LogLevel: slog.LevelError}, logger, jwtService, enforcer, handlers)

	return &routerFixture{router: router, jwt: jwtService, attendance: att, leave: lv}
}

func (f *routerFixture) token(t *testing.T, role user.Role, employeeID string) string {
	t.Helper()
	tok, _, err := f.jwt.GenerateAccessToken(jwt.AccessClaims{
		UserID:     "user-" + employeeID,
		EmployeeID: employeeID,
		Email:      employeeID + "@example.com",
		Role:       role,
	})
	require.NoError(t, err)
	return tok
}

func (f *routerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Code, resp.Error.Message
}

func TestRouter_SubmitAttendance_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/attendance", "", `{}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, f.attendance.calls)
}

func TestRouter_SubmitAttendance_ReturnsBareRecord(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/attendance", f.token(t, user.RoleEmployee, "emp-1"),
		`{"location":{"lat":-6.2,"lng":106.8},"photo":"data:image/png;base64,AAAA"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var record map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "att-1", record["id"])
	assert.Equal(t, "emp-1", record["employeeId"])
	assert.Equal(t, "present", record["status"])
	assert.Contains(t, record, "clockIn")
	assert.NotContains(t, record, "success")

	require.Len(t, f.attendance.sessions, 1)
	assert.Equal(t, "emp-1", f.attendance.sessions[0].EmployeeID)
	assert.Equal(t, &geo.Point{Lat: -6.2, Lng: 106.8}, f.attendance.requests[0].Location)
}

func TestRouter_SubmitAttendance_EmptyBody(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/attendance", f.token(t, user.RoleEmployee, "emp-1"), "")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.attendance.requests, 1)
	assert.Nil(t, f.attendance.requests[0].Location)
	assert.Nil(t, f.attendance.requests[0].Photo)
}

func TestRouter_SubmitAttendance_MalformedLocationReachesService(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/attendance", f.token(t, user.RoleEmployee, "emp-1"), `{"location":{"lat":"x"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.attendance.requests, 1)
	assert.True(t, f.attendance.requests[0].Malformed)
	assert.Nil(t, f.attendance.requests[0].Location)
}

func TestRouter_SubmitAttendance_BrokenJSON(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/attendance", f.token(t, user.RoleEmployee, "emp-1"), `{"location":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := errorCode(t, w)
	assert.Equal(t, "BAD_REQUEST", code)
	assert.Zero(t, f.attendance.calls)
}

func TestRouter_SubmitAttendance_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"location required", attendance.ErrLocationRequired, http.StatusBadRequest, "LOCATION_REQUIRED"},
		{"outside geofence", attendance.ErrOutsideGeofence, http.StatusForbidden, "OUTSIDE_GEOFENCE"},
		{"no location configured", attendance.ErrNoLocationConfigured, http.StatusForbidden, "NO_LOCATION_CONFIGURED"},
		{"employee missing", employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already completed", attendance.ErrAlreadyCompleted, http.StatusConflict, "ALREADY_COMPLETED"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.attendance.err = tt.err

			w := f.do(http.MethodPost, "/attendance", f.token(t, user.RoleEmployee, "emp-1"), `{}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			code, message := errorCode(t, w)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "An unexpected error occurred", message)
			}
		})
	}
}

func TestRouter_RefreshTokenIsNotABearer(t *testing.T) {
	f := newRouterFixture(t)
	refresh, _, err := f.jwt.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	w := f.do(http.MethodPost, "/attendance", refresh, `{}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, f.attendance.calls)
}

func TestRouter_ListRecords_BareArray(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/attendance", f.token(t, user.RoleEmployee, "emp-1"), "")

	require.Equal(t, http.StatusOK, w.Code)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "late", records[0]["status"])
}

func TestRouter_ListAttendance_Envelope(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/api/v1/attendance?page=2&limit=5", f.token(t, user.RoleEmployee, "emp-1"), "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
		Meta    map[string]any   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 1)
	assert.EqualValues(t, 2, resp.Meta["page"])
	assert.EqualValues(t, 5, resp.Meta["limit"])
}

func TestRouter_Export(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/api/v1/attendance/export?from=2025-03-01&to=2025-03-31", f.token(t, user.RoleEmployee, "emp-1"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodGet, "/api/v1/attendance/export?from=2025-03-01&to=2025-03-31", f.token(t, user.RoleManager, "emp-9"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance-2025-03-01-2025-03-31.xlsx")
}

func TestRouter_ApproveLeave_RequiresApprover(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/leave/lv-1/approve", f.token(t, user.RoleEmployee, "emp-1"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, f.leave.approved)

	w = f.do(http.MethodPost, "/api/v1/leave/lv-1/approve", f.token(t, user.RoleManager, "emp-9"), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"lv-1"}, f.leave.approved)
}

func TestRouter_NotificationStream_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/api/v1/notifications/stream", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// An access token is not a stream token.
	w = f.do(http.MethodGet, "/api/v1/notifications/stream?token="+f.token(t, user.RoleEmployee, "emp-1"), "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
