package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	approvalservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/approval"
	"github.com/dustin/go-humanize/english"
)

type LeaveServiceImpl struct {
	tx           database.Transactor
	leaveRepo    leave.LeaveRepository
	employeeRepo employee.EmployeeRepository
	notifier     notification.Service
	guard        approvalservice.Guard
	clock        clock.Clock
}

func NewLeaveService(
	tx database.Transactor,
	leaveRepo leave.LeaveRepository,
	employeeRepo employee.EmployeeRepository,
	notifier notification.Service,
	authorizer rbac.Authorizer,
	clk clock.Clock,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:           tx,
		leaveRepo:    leaveRepo,
		employeeRepo: employeeRepo,
		notifier:     notifier,
		guard: approvalservice.NewGuard(authorizer, approvalservice.Permissions{
			ViewAll: user.PermissionLeaveViewAll,
			Decide:  user.PermissionLeaveApprove,
		}),
		clock: clk,
	}
}

func (s *LeaveServiceImpl) Create(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	session, err := s.guard.Employee(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	overlap, err := s.leaveRepo.HasOverlap(ctx, session.EmployeeID, req.Start, req.End)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if overlap {
		return leave.LeaveResponse{}, leave.ErrOverlappingLeave
	}

	if leave.LeaveType(req.LeaveType) == leave.LeaveTypeAnnual {
		emp, err := s.employeeRepo.GetByID(ctx, session.EmployeeID)
		if err != nil {
			return leave.LeaveResponse{}, err
		}
		if leave.DayCount(req.Start, req.End) > emp.RemainingLeave() {
			return leave.LeaveResponse{}, leave.ErrInsufficientQuota
		}
	}

	created, err := s.leaveRepo.Create(ctx, leave.LeaveRequest{
		EmployeeID: session.EmployeeID,
		LeaveType:  leave.LeaveType(req.LeaveType),
		StartDate:  req.Start,
		EndDate:    req.End,
		Reason:     req.Reason,
		Status:     approval.StatusPending,
	})
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	slog.Info("Leave requested", "leave_id", created.ID, "employee_id", created.EmployeeID, "days", created.DayCount())
	return leave.ToResponse(created), nil
}

func (s *LeaveServiceImpl) Get(ctx context.Context, id string) (leave.LeaveResponse, error) {
	session, err := s.guard.Employee(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	l, err := s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !s.guard.CanView(session, l.EmployeeID) {
		return leave.LeaveResponse{}, approval.ErrForbidden
	}
	return leave.ToResponse(l), nil
}

func (s *LeaveServiceImpl) ListMine(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	session, err := s.guard.Employee(ctx)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}
	filter.EmployeeID = &session.EmployeeID
	return s.list(ctx, filter)
}

func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	if _, err := s.guard.Viewer(ctx); err != nil {
		return leave.ListLeaveResponse{}, err
	}
	return s.list(ctx, filter)
}

func (s *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}

	requests, total, err := s.leaveRepo.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveResponse, 0, len(requests))
	for _, l := range requests {
		responses = append(responses, leave.ToResponse(l))
	}
	return leave.ListLeaveResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: approvalservice.TotalPages(total, filter.Limit),
		Requests:   responses,
	}, nil
}

// Approve counts the leave days against the employee exactly once: only the
// transaction that moves the request out of pending adds them.
func (s *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.LeaveResponse, error) {
	session, err := s.guard.Decider(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	var decided leave.LeaveRequest
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.leaveRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := approvalservice.CheckDecision(session, current.EmployeeID, current.Status, approval.StatusApproved); err != nil {
			return err
		}

		decided, err = s.leaveRepo.Decide(txCtx, id, approval.Approve(session.EmployeeID, s.clock.Now()))
		if err != nil {
			return err
		}
		return s.employeeRepo.AddUsedLeaveDays(txCtx, decided.EmployeeID, decided.DayCount())
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	slog.Info("Leave approved", "leave_id", id, "approver_id", session.EmployeeID, "days", decided.DayCount())
	s.notify(ctx, session.EmployeeID, decided)
	return leave.ToResponse(decided), nil
}

func (s *LeaveServiceImpl) Reject(ctx context.Context, id string, req approval.RejectRequest) (leave.LeaveResponse, error) {
	session, err := s.guard.Decider(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	current, err := s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if err := approvalservice.CheckDecision(session, current.EmployeeID, current.Status, approval.StatusRejected); err != nil {
		return leave.LeaveResponse{}, err
	}

	decided, err := s.leaveRepo.Decide(ctx, id, approval.Reject(session.EmployeeID, s.clock.Now(), req.Reason))
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	slog.Info("Leave rejected", "leave_id", id, "approver_id", session.EmployeeID)
	s.notify(ctx, session.EmployeeID, decided)
	return leave.ToResponse(decided), nil
}

func (s *LeaveServiceImpl) notify(ctx context.Context, senderID string, l leave.LeaveRequest) {
	kind, verb := notification.TypeLeaveApproved, "approved"
	if l.Status == approval.StatusRejected {
		kind, verb = notification.TypeLeaveRejected, "rejected"
	}

	message := fmt.Sprintf("Your %s leave from %s to %s (%s) was %s.",
		l.LeaveType,
		l.StartDate.Format("2 Jan 2006"),
		l.EndDate.Format("2 Jan 2006"),
		english.Plural(l.DayCount(), "day", ""),
		verb,
	)
	if l.RejectNote != nil {
		message += " Reason: " + *l.RejectNote
	}

	s.notifier.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: l.EmployeeID,
		SenderID:    &senderID,
		Type:        kind,
		Title:       "Leave request " + verb,
		Message:     message,
		Data: map[string]any{
			"leave_id":   l.ID,
			"start_date": l.StartDate.Format(time.DateOnly),
			"end_date":   l.EndDate.Format(time.DateOnly),
		},
	})
}
