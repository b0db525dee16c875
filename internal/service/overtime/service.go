package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	approvalservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/approval"
)

type OvertimeServiceImpl struct {
	repo     overtime.OvertimeRepository
	notifier notification.Service
	guard    approvalservice.Guard
	clock    clock.Clock
}

func NewOvertimeService(
	repo overtime.OvertimeRepository,
	notifier notification.Service,
	authorizer rbac.Authorizer,
	clk clock.Clock,
) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		repo:     repo,
		notifier: notifier,
		guard: approvalservice.NewGuard(authorizer, approvalservice.Permissions{
			ViewAll: user.PermissionOvertimeViewAll,
			Decide:  user.PermissionOvertimeApprove,
		}),
		clock: clk,
	}
}

func (s *OvertimeServiceImpl) Create(ctx context.Context, req overtime.CreateOvertimeRequest) (overtime.OvertimeResponse, error) {
	session, err := s.guard.Employee(ctx)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	created, err := s.repo.Create(ctx, overtime.OvertimeRequest{
		EmployeeID:    session.EmployeeID,
		Date:          req.Day,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		DurationHours: req.Duration,
		Reason:        req.Reason,
		Status:        approval.StatusPending,
	})
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	slog.Info("Overtime requested", "overtime_id", created.ID, "employee_id", created.EmployeeID, "hours", created.DurationHours.String())
	return overtime.ToResponse(created), nil
}

func (s *OvertimeServiceImpl) Get(ctx context.Context, id string) (overtime.OvertimeResponse, error) {
	session, err := s.guard.Employee(ctx)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if !s.guard.CanView(session, o.EmployeeID) {
		return overtime.OvertimeResponse{}, approval.ErrForbidden
	}
	return overtime.ToResponse(o), nil
}

func (s *OvertimeServiceImpl) ListMine(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	session, err := s.guard.Employee(ctx)
	if err != nil {
		return overtime.ListOvertimeResponse{}, err
	}
	filter.EmployeeID = &session.EmployeeID
	return s.list(ctx, filter)
}

func (s *OvertimeServiceImpl) List(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	if _, err := s.guard.Viewer(ctx); err != nil {
		return overtime.ListOvertimeResponse{}, err
	}
	return s.list(ctx, filter)
}

func (s *OvertimeServiceImpl) list(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	if err := filter.Validate(); err != nil {
		return overtime.ListOvertimeResponse{}, err
	}

	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return overtime.ListOvertimeResponse{}, fmt.Errorf("failed to list overtime requests: %w", err)
	}

	responses := make([]overtime.OvertimeResponse, 0, len(requests))
	for _, o := range requests {
		responses = append(responses, overtime.ToResponse(o))
	}
	return overtime.ListOvertimeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: approvalservice.TotalPages(total, filter.Limit),
		Requests:   responses,
	}, nil
}

func (s *OvertimeServiceImpl) Approve(ctx context.Context, id string) (overtime.OvertimeResponse, error) {
	return s.decide(ctx, id, approval.StatusApproved, "")
}

func (s *OvertimeServiceImpl) Reject(ctx context.Context, id string, req approval.RejectRequest) (overtime.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}
	return s.decide(ctx, id, approval.StatusRejected, req.Reason)
}

func (s *OvertimeServiceImpl) decide(ctx context.Context, id string, to approval.Status, reason string) (overtime.OvertimeResponse, error) {
	session, err := s.guard.Decider(ctx)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if err := approvalservice.CheckDecision(session, current.EmployeeID, current.Status, to); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	d := approval.Approve(session.EmployeeID, s.clock.Now())
	if to == approval.StatusRejected {
		d = approval.Reject(session.EmployeeID, s.clock.Now(), reason)
	}
	decided, err := s.repo.Decide(ctx, id, d)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	slog.Info("Overtime decided", "overtime_id", id, "status", decided.Status, "approver_id", session.EmployeeID)

	kind := notification.TypeOvertimeApproved
	if decided.Status == approval.StatusRejected {
		kind = notification.TypeOvertimeRejected
	}
	message := fmt.Sprintf("Your overtime on %s (%s-%s, %s hours) was %s.",
		decided.Date.Format("2 Jan 2006"), decided.StartTime, decided.EndTime,
		decided.DurationHours.StringFixed(2), decided.Status)
	if decided.RejectNote != nil {
		message += " Reason: " + *decided.RejectNote
	}
	s.notifier.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: decided.EmployeeID,
		SenderID:    &session.EmployeeID,
		Type:        kind,
		Title:       "Overtime request " + string(decided.Status),
		Message:     message,
		Data: map[string]any{
			"overtime_id": decided.ID,
			"date":        decided.Date.Format(time.DateOnly),
		},
	})

	return overtime.ToResponse(decided), nil
}
