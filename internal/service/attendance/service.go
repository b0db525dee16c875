package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
)

// ProfileLoader is the part of the employee directory the recorder reads.
type ProfileLoader interface {
	AttendanceProfile(ctx context.Context, employeeID string) (employee.AttendanceProfile, error)
}

type AttendanceServiceImpl struct {
	tx           database.Transactor
	repo         attendance.AttendanceRepository
	profiles     ProfileLoader
	employeeRepo employee.EmployeeRepository
	leaveRepo    leave.LeaveRepository
	photos       file.PhotoStore
	authorizer   rbac.Authorizer
	clock        clock.Clock
}

func NewAttendanceService(
	tx database.Transactor,
	repo attendance.AttendanceRepository,
	profiles ProfileLoader,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveRepository,
	photos file.PhotoStore,
	authorizer rbac.Authorizer,
	clk clock.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:           tx,
		repo:         repo,
		profiles:     profiles,
		employeeRepo: employeeRepo,
		leaveRepo:    leaveRepo,
		photos:       photos,
		authorizer:   authorizer,
		clock:        clk,
	}
}

func employeeSession(ctx context.Context) (auth.Session, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return auth.Session{}, err
	}
	if session.EmployeeID == "" {
		return auth.Session{}, employee.ErrEmployeeNotFound
	}
	return session, nil
}

// checkLocation applies the geofence policy for one submission and returns
// the point to store. Bypass employees are never evaluated; an unusable
// point is dropped for them.
func checkLocation(profile employee.AttendanceProfile, req attendance.SubmitRequest) (*geo.Point, error) {
	point, unusable := req.Point()
	if profile.BypassLocation {
		return point, nil
	}
	if point == nil || unusable {
		return nil, attendance.ErrLocationRequired
	}
	if len(profile.Locations) == 0 {
		return nil, attendance.ErrNoLocationConfigured
	}
	fences := make([]geo.Fence, 0, len(profile.Locations))
	for _, l := range profile.Locations {
		fences = append(fences, l.Fence())
	}
	if !geo.AnyContains(fences, *point) {
		return nil, attendance.ErrOutsideGeofence
	}
	return point, nil
}

// Submit clocks the caller in, or out when today's record is still open.
func (s *AttendanceServiceImpl) Submit(ctx context.Context, req attendance.SubmitRequest) (attendance.RecordResponse, error) {
	session, err := employeeSession(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.clock.Now()
	today := clock.DateOf(now)

	profile, err := s.profiles.AttendanceProfile(ctx, session.EmployeeID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	point, err := checkLocation(profile, req)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	req.Location, req.Malformed = point, false

	var (
		result  attendance.Record
		stored  []string
		clockIn bool
	)
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByEmployeeAndDateForUpdate(txCtx, session.EmployeeID, today)
		if err == nil {
			result, err = s.clockOut(txCtx, existing, now, req, &stored)
			return err
		}
		if !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return err
		}

		photo, err := s.savePhoto(txCtx, session.EmployeeID, today, file.KindClockIn, req.Photo, &stored)
		if err != nil {
			return err
		}
		rec, created, err := s.repo.CreateClockIn(txCtx, attendance.Record{
			EmployeeID:      session.EmployeeID,
			Date:            today,
			ClockIn:         &now,
			ClockInLocation: req.Location,
			ClockInPhoto:    photo,
			Status:          attendance.StatusAt(now),
		})
		if err != nil {
			return err
		}
		if created {
			result, clockIn = rec, true
			return nil
		}

		// A concurrent submission created today's record first.
		existing, err = s.repo.GetByEmployeeAndDateForUpdate(txCtx, session.EmployeeID, today)
		if err != nil {
			return err
		}
		result, err = s.clockOut(txCtx, existing, now, req, &stored)
		return err
	})
	if err != nil {
		s.discardPhotos(ctx, stored)
		return attendance.RecordResponse{}, err
	}

	slog.Info("Attendance recorded",
		"employee_id", session.EmployeeID,
		"date", today.Format(time.DateOnly),
		"clock_in", clockIn,
		"status", result.Status,
	)
	return attendance.ToResponse(result), nil
}

func (s *AttendanceServiceImpl) clockOut(ctx context.Context, existing attendance.Record, now time.Time, req attendance.SubmitRequest, stored *[]string) (attendance.Record, error) {
	if existing.Completed() || existing.ClockIn == nil {
		return attendance.Record{}, attendance.ErrAlreadyCompleted
	}

	photo, err := s.savePhoto(ctx, existing.EmployeeID, existing.Date, file.KindClockOut, req.Photo, stored)
	if err != nil {
		return attendance.Record{}, err
	}
	return s.repo.CompleteClockOut(ctx, existing.ID, now, req.Location, photo)
}

func (s *AttendanceServiceImpl) savePhoto(ctx context.Context, employeeID string, date time.Time, kind string, payload *string, stored *[]string) (*string, error) {
	key, err := s.photos.SavePhoto(ctx, employeeID, date, kind, payload)
	if err != nil {
		return nil, err
	}
	if key != nil {
		*stored = append(*stored, *key)
	}
	return key, nil
}

func (s *AttendanceServiceImpl) discardPhotos(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.photos.DeleteFile(ctx, key); err != nil {
			slog.Warn("Failed to remove orphaned attendance photo", "key", key, "error", err)
		}
	}
}

func (s *AttendanceServiceImpl) Today(ctx context.Context) (attendance.TodayResponse, error) {
	session, err := employeeSession(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	today := clock.Today(s.clock)
	resp := attendance.TodayResponse{Date: today.Format(time.DateOnly)}

	rec, err := s.repo.GetByEmployeeAndDate(ctx, session.EmployeeID, today)
	switch {
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		resp.CanClockIn = true
		return resp, nil
	case err != nil:
		return attendance.TodayResponse{}, err
	}

	r := attendance.ToResponse(rec)
	resp.Record = &r
	resp.CanClockOut = rec.ClockIn != nil && !rec.Completed()
	return resp, nil
}

func (s *AttendanceServiceImpl) Get(ctx context.Context, id string) (attendance.RecordResponse, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if rec.EmployeeID != session.EmployeeID && !s.authorizer.Can(session.Role, user.PermissionAttendanceViewAll) {
		return attendance.RecordResponse{}, attendance.ErrForbiddenEmployee
	}
	return attendance.ToResponse(rec), nil
}

// List returns the caller's own records unless the caller may view everyone's.
// Without an employee filter an elevated caller sees all employees.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if err := s.scopeFilter(session, &filter.EmployeeID); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	return attendance.ListAttendanceResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Records:    attendance.ToResponses(records),
	}, nil
}

func (s *AttendanceServiceImpl) scopeFilter(session auth.Session, employeeID **string) error {
	if s.authorizer.Can(session.Role, user.PermissionAttendanceViewAll) {
		if *employeeID != nil && **employeeID == "" {
			*employeeID = nil
		}
		return nil
	}
	if session.EmployeeID == "" {
		return employee.ErrEmployeeNotFound
	}
	if *employeeID != nil && **employeeID != "" && **employeeID != session.EmployeeID {
		return attendance.ErrForbiddenEmployee
	}
	own := session.EmployeeID
	*employeeID = &own
	return nil
}

// MarkAbsent writes a status-only record for every active employee that has
// none on date. Employees on approved leave get StatusLeave.
func (s *AttendanceServiceImpl) MarkAbsent(ctx context.Context, date time.Time) (int64, error) {
	date = clock.DateOf(date)

	var inserted int64
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		active, err := s.employeeRepo.ListActiveIDs(txCtx, date)
		if err != nil {
			return fmt.Errorf("list active employees: %w", err)
		}
		if len(active) == 0 {
			return nil
		}

		onLeave, err := s.leaveRepo.ApprovedEmployeeIDsOn(txCtx, date)
		if err != nil {
			return fmt.Errorf("list employees on leave: %w", err)
		}
		leaveSet := make(map[string]struct{}, len(onLeave))
		for _, id := range onLeave {
			leaveSet[id] = struct{}{}
		}

		var leaveIDs, absentIDs []string
		for _, id := range active {
			if _, ok := leaveSet[id]; ok {
				leaveIDs = append(leaveIDs, id)
			} else {
				absentIDs = append(absentIDs, id)
			}
		}

		for status, ids := range map[attendance.Status][]string{
			attendance.StatusLeave:  leaveIDs,
			attendance.StatusAbsent: absentIDs,
		} {
			if len(ids) == 0 {
				continue
			}
			n, err := s.repo.MarkMissing(txCtx, ids, date, status)
			if err != nil {
				return fmt.Errorf("mark %s: %w", status, err)
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Missing attendance filled", "date", date.Format(time.DateOnly), "inserted", inserted)
	return inserted, nil
}
