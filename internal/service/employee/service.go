package employee

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	authservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/auth"
	"github.com/shopspring/decimal"
)

type EmployeeServiceImpl struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	userRepo     user.UserRepository
	locationRepo location.LocationRepository
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	locationRepo location.LocationRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		locationRepo: locationRepo,
	}
}

// Create provisions the login account and the employee record together.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return employee.EmployeeResponse{}, employee.ErrEmailExists
	}

	exists, err = s.employeeRepo.ExistsByCode(ctx, req.EmployeeCode)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check employee code: %w", err)
	}
	if exists {
		return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
	}

	hash, err := authservice.HashPassword(req.Password)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	hireDate, _ := time.Parse(time.DateOnly, req.HireDate)

	var created employee.Employee
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		u, err := s.userRepo.Create(txCtx, user.User{
			Email:        req.Email,
			PasswordHash: &hash,
			Role:         user.Role(req.Role),
			IsActive:     true,
		})
		if err != nil {
			return err
		}

		created, err = s.employeeRepo.Create(txCtx, employee.Employee{
			UserID:           u.ID,
			EmployeeCode:     req.EmployeeCode,
			FullName:         req.FullName,
			Position:         req.Position,
			PhoneNumber:      req.PhoneNumber,
			ShiftID:          req.ShiftID,
			BypassLocation:   req.BypassLocation,
			BaseSalary:       decimal.RequireFromString(req.BaseSalary),
			AnnualLeaveQuota: req.AnnualLeaveQuota,
			HireDate:         hireDate,
			IsActive:         true,
		})
		if err != nil {
			return err
		}
		created.Email, created.Role = u.Email, u.Role

		if len(req.LocationIDs) > 0 {
			if err := s.locationRepo.ReplaceEmployeeLocations(txCtx, created.ID, dedupe(req.LocationIDs)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "code", created.EmployeeCode)
	return s.withLocations(ctx, created)
}

func (s *EmployeeServiceImpl) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.withLocations(ctx, e)
}

func (s *EmployeeServiceImpl) GetMine(ctx context.Context) (employee.EmployeeResponse, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if session.EmployeeID == "" {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	return s.GetByID(ctx, session.EmployeeID)
}

func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.ToResponse(e))
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Employees:  responses,
	}, nil
}

func (s *EmployeeServiceImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var updated employee.Employee
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.employeeRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		previousRole := existing.Role
		req.Apply(&existing)

		updated, err = s.employeeRepo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		if existing.Role != previousRole {
			if err := s.userRepo.UpdateRole(txCtx, existing.UserID, existing.Role); err != nil {
				return err
			}
		}
		updated.Email, updated.Role = existing.Email, existing.Role
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.withLocations(ctx, updated)
}

// AssignLocations replaces the employee's permitted set. An empty list clears it.
func (s *EmployeeServiceImpl) AssignLocations(ctx context.Context, req employee.AssignLocationsRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.locationRepo.ReplaceEmployeeLocations(ctx, e.ID, dedupe(req.LocationIDs)); err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.withLocations(ctx, e)
}

func (s *EmployeeServiceImpl) SetBypass(ctx context.Context, req employee.SetBypassRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.employeeRepo.SetBypassLocation(ctx, req.EmployeeID, *req.BypassLocation); err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.GetByID(ctx, req.EmployeeID)
}

// Deactivate disables the employee and its login. History is kept.
func (s *EmployeeServiceImpl) Deactivate(ctx context.Context, id string) error {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return err
	}
	if session.EmployeeID == id {
		return employee.ErrCannotDeactivateSelf
	}

	return s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		e, err := s.employeeRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if !e.IsActive {
			return employee.ErrEmployeeAlreadyInactive
		}
		if err := s.employeeRepo.SetActive(txCtx, id, false); err != nil {
			return err
		}
		return s.userRepo.SetActive(txCtx, e.UserID, false)
	})
}

func (s *EmployeeServiceImpl) AttendanceProfile(ctx context.Context, employeeID string) (employee.AttendanceProfile, error) {
	e, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return employee.AttendanceProfile{}, err
	}

	profile := employee.AttendanceProfile{EmployeeID: e.ID, BypassLocation: e.BypassLocation}
	if e.BypassLocation {
		return profile, nil
	}

	profile.Locations, err = s.locationRepo.ListByEmployee(ctx, e.ID)
	if err != nil {
		return employee.AttendanceProfile{}, fmt.Errorf("failed to load permitted locations: %w", err)
	}
	return profile, nil
}

func (s *EmployeeServiceImpl) withLocations(ctx context.Context, e employee.Employee) (employee.EmployeeResponse, error) {
	resp := employee.ToResponse(e)

	locations, err := s.locationRepo.ListByEmployee(ctx, e.ID)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to load permitted locations: %w", err)
	}
	resp.Locations = make([]location.LocationResponse, 0, len(locations))
	for _, l := range locations {
		resp.Locations = append(resp.Locations, location.ToResponse(l))
	}
	return resp, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
