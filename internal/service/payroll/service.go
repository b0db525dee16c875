package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	approvalservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/approval"
	"github.com/google/uuid"
)

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	overtimeRepo overtime.OvertimeRepository
	notifier     notification.Service
	authorizer   rbac.Authorizer
	clock        clock.Clock
	rates        payroll.Rates
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	overtimeRepo overtime.OvertimeRepository,
	notifier notification.Service,
	authorizer rbac.Authorizer,
	clk clock.Clock,
	rates payroll.Rates,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		overtimeRepo: overtimeRepo,
		notifier:     notifier,
		authorizer:   authorizer,
		clock:        clk,
		rates:        rates,
	}
}

func (s *PayrollServiceImpl) manager(ctx context.Context) (auth.Session, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return auth.Session{}, err
	}
	if !s.authorizer.Can(session.Role, user.PermissionPayrollManage) {
		return auth.Session{}, approval.ErrForbidden
	}
	return session, nil
}

func (s *PayrollServiceImpl) AddComponent(ctx context.Context, req payroll.AddComponentRequest) (payroll.ComponentResponse, error) {
	if _, err := s.manager(ctx); err != nil {
		return payroll.ComponentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.ComponentResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return payroll.ComponentResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.ComponentResponse{}, fmt.Errorf("generate component id: %w", err)
	}
	created, err := s.payrollRepo.AddComponent(ctx, payroll.EmployeeComponent{
		ID:         id.String(),
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Type:       payroll.ComponentType(req.Type),
		Amount:     req.Value,
	})
	if err != nil {
		return payroll.ComponentResponse{}, fmt.Errorf("failed to add payroll component: %w", err)
	}
	return payroll.ToComponentResponse(created), nil
}

func (s *PayrollServiceImpl) ListComponents(ctx context.Context, employeeID string) ([]payroll.ComponentResponse, error) {
	if _, err := s.manager(ctx); err != nil {
		return nil, err
	}
	components, err := s.payrollRepo.ListComponents(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll components: %w", err)
	}
	out := make([]payroll.ComponentResponse, 0, len(components))
	for _, c := range components {
		out = append(out, payroll.ToComponentResponse(c))
	}
	return out, nil
}

func (s *PayrollServiceImpl) DeleteComponent(ctx context.Context, employeeID, id string) error {
	if _, err := s.manager(ctx); err != nil {
		return err
	}
	return s.payrollRepo.DeleteComponent(ctx, employeeID, id)
}

// Generate computes the slip for one employee and month from attendance,
// approved overtime and recurring components. Re-generating replaces the
// draft; a published slip is left untouched.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GenerateSlipRequest) (payroll.SlipResponse, error) {
	if _, err := s.manager(ctx); err != nil {
		return payroll.SlipResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.SlipResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	from, to := payroll.Period(req.Year, req.Month, s.clock.Now().Location())

	var saved payroll.Slip
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		summary, err := s.payrollRepo.SummarizeAttendance(ctx, emp.ID, from, to)
		if err != nil {
			return fmt.Errorf("summarize attendance: %w", err)
		}
		hours, err := s.overtimeRepo.ApprovedHours(ctx, emp.ID, from, to)
		if err != nil {
			return fmt.Errorf("sum approved overtime: %w", err)
		}
		components, err := s.payrollRepo.ListComponents(ctx, emp.ID)
		if err != nil {
			return fmt.Errorf("list payroll components: %w", err)
		}

		slip := payroll.Compute(payroll.Input{
			BaseSalary:    emp.BaseSalary,
			Components:    components,
			OvertimeHours: hours,
			Attendance:    summary,
			WorkingDays:   payroll.WorkingDays(from, to),
			Rates:         s.rates,
		})
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate slip id: %w", err)
		}
		slip.ID = id.String()
		slip.EmployeeID = emp.ID
		slip.PeriodYear = req.Year
		slip.PeriodMonth = req.Month
		slip.Status = payroll.SlipStatusDraft

		saved, err = s.payrollRepo.UpsertDraft(ctx, slip)
		return err
	})
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	slog.Info("Payroll slip generated", "slip_id", saved.ID, "employee_id", emp.ID,
		"period", fmt.Sprintf("%04d-%02d", req.Year, req.Month), "net_pay", saved.NetPay.String())
	return payroll.ToSlipResponse(saved), nil
}

// readable loads a slip the caller may see: managers see every slip,
// employees only their own published ones.
func (s *PayrollServiceImpl) readable(ctx context.Context, id string) (payroll.Slip, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return payroll.Slip{}, err
	}

	slip, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.Slip{}, err
	}
	if s.authorizer.Can(session.Role, user.PermissionPayrollManage) {
		return slip, nil
	}
	if slip.EmployeeID != session.EmployeeID || slip.Status != payroll.SlipStatusPublished {
		return payroll.Slip{}, payroll.ErrSlipNotFound
	}
	return slip, nil
}

func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.SlipResponse, error) {
	slip, err := s.readable(ctx, id)
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	return payroll.ToSlipResponse(slip), nil
}

func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.SlipFilter) (payroll.ListSlipResponse, error) {
	if _, err := s.manager(ctx); err != nil {
		return payroll.ListSlipResponse{}, err
	}
	return s.list(ctx, filter)
}

func (s *PayrollServiceImpl) ListMine(ctx context.Context, filter payroll.SlipFilter) (payroll.ListSlipResponse, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return payroll.ListSlipResponse{}, err
	}
	if session.EmployeeID == "" {
		return payroll.ListSlipResponse{}, employee.ErrEmployeeNotFound
	}
	published := string(payroll.SlipStatusPublished)
	filter.EmployeeID = &session.EmployeeID
	filter.Status = &published
	return s.list(ctx, filter)
}

func (s *PayrollServiceImpl) list(ctx context.Context, filter payroll.SlipFilter) (payroll.ListSlipResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListSlipResponse{}, err
	}
	slips, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListSlipResponse{}, fmt.Errorf("failed to list payroll slips: %w", err)
	}
	out := make([]payroll.SlipResponse, 0, len(slips))
	for _, slip := range slips {
		out = append(out, payroll.ToSlipResponse(slip))
	}
	return payroll.ListSlipResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: approvalservice.TotalPages(total, filter.Limit),
		Slips:      out,
	}, nil
}

func (s *PayrollServiceImpl) Publish(ctx context.Context, id string) (payroll.SlipResponse, error) {
	session, err := s.manager(ctx)
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	published, err := s.payrollRepo.Publish(ctx, id, s.clock.Now())
	if err != nil {
		if errors.Is(err, payroll.ErrSlipAlreadyPublished) {
			slog.Warn("Payroll slip publish skipped", "slip_id", id)
		}
		return payroll.SlipResponse{}, err
	}

	slog.Info("Payroll slip published", "slip_id", id, "employee_id", published.EmployeeID)

	var sender *string
	if session.EmployeeID != "" {
		sender = &session.EmployeeID
	}
	period := time.Date(published.PeriodYear, time.Month(published.PeriodMonth), 1, 0, 0, 0, 0, time.UTC)
	s.notifier.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: published.EmployeeID,
		SenderID:    sender,
		Type:        notification.TypePayslipPublished,
		Title:       "Payslip available",
		Message:     fmt.Sprintf("Your payslip for %s is ready. Net pay: %s.", period.Format("January 2006"), formatMoney(published.NetPay)),
		Data: map[string]any{
			"slip_id": published.ID,
			"year":    published.PeriodYear,
			"month":   published.PeriodMonth,
		},
	})

	return payroll.ToSlipResponse(published), nil
}
