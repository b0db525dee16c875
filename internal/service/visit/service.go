package visit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/visit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	approvalservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
)

type VisitServiceImpl struct {
	repo     visit.VisitRepository
	photos   file.PhotoStore
	notifier notification.Service
	guard    approvalservice.Guard
	clock    clock.Clock
}

func NewVisitService(
	repo visit.VisitRepository,
	photos file.PhotoStore,
	notifier notification.Service,
	authorizer rbac.Authorizer,
	clk clock.Clock,
) visit.VisitService {
	return &VisitServiceImpl{
		repo:     repo,
		photos:   photos,
		notifier: notifier,
		guard: approvalservice.NewGuard(authorizer, approvalservice.Permissions{
			ViewAll: user.PermissionVisitViewAll,
			Decide:  user.PermissionVisitApprove,
		}),
		clock: clk,
	}
}

func (s *VisitServiceImpl) Create(ctx context.Context, req visit.CreateVisitRequest) (visit.VisitResponse, error) {
	session, err := s.guard.Employee(ctx)
	if err != nil {
		return visit.VisitResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return visit.VisitResponse{}, err
	}

	photo, err := s.photos.SavePhoto(ctx, session.EmployeeID, req.Day, file.KindVisit, req.Photo)
	if err != nil {
		return visit.VisitResponse{}, err
	}

	created, err := s.repo.Create(ctx, visit.VisitReport{
		EmployeeID:  session.EmployeeID,
		VisitDate:   req.Day,
		ClientName:  req.ClientName,
		Purpose:     req.Purpose,
		ResultNotes: req.ResultNotes,
		Location:    req.Location,
		Photo:       photo,
		Status:      approval.StatusPending,
	})
	if err != nil {
		if photo != nil {
			if delErr := s.photos.DeleteFile(ctx, *photo); delErr != nil {
				slog.Warn("Failed to remove orphaned visit photo", "key", *photo, "error", delErr)
			}
		}
		return visit.VisitResponse{}, fmt.Errorf("failed to create visit report: %w", err)
	}

	slog.Info("Visit reported", "visit_id", created.ID, "employee_id", created.EmployeeID)
	return visit.ToResponse(created), nil
}

func (s *VisitServiceImpl) Get(ctx context.Context, id string) (visit.VisitResponse, error) {
	session, err := s.guard.Employee(ctx)
	if err != nil {
		return visit.VisitResponse{}, err
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return visit.VisitResponse{}, err
	}
	if !s.guard.CanView(session, v.EmployeeID) {
		return visit.VisitResponse{}, approval.ErrForbidden
	}
	return visit.ToResponse(v), nil
}

func (s *VisitServiceImpl) ListMine(ctx context.Context, filter visit.VisitFilter) (visit.ListVisitResponse, error) {
	session, err := s.guard.Employee(ctx)
	if err != nil {
		return visit.ListVisitResponse{}, err
	}
	filter.EmployeeID = &session.EmployeeID
	return s.list(ctx, filter)
}

func (s *VisitServiceImpl) List(ctx context.Context, filter visit.VisitFilter) (visit.ListVisitResponse, error) {
	if _, err := s.guard.Viewer(ctx); err != nil {
		return visit.ListVisitResponse{}, err
	}
	return s.list(ctx, filter)
}

func (s *VisitServiceImpl) list(ctx context.Context, filter visit.VisitFilter) (visit.ListVisitResponse, error) {
	if err := filter.Validate(); err != nil {
		return visit.ListVisitResponse{}, err
	}

	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return visit.ListVisitResponse{}, fmt.Errorf("failed to list visit reports: %w", err)
	}

	responses := make([]visit.VisitResponse, 0, len(reports))
	for _, v := range reports {
		responses = append(responses, visit.ToResponse(v))
	}
	return visit.ListVisitResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: approvalservice.TotalPages(total, filter.Limit),
		Reports:    responses,
	}, nil
}

func (s *VisitServiceImpl) Approve(ctx context.Context, id string) (visit.VisitResponse, error) {
	return s.decide(ctx, id, approval.StatusApproved, "")
}

func (s *VisitServiceImpl) Reject(ctx context.Context, id string, req approval.RejectRequest) (visit.VisitResponse, error) {
	if err := req.Validate(); err != nil {
		return visit.VisitResponse{}, err
	}
	return s.decide(ctx, id, approval.StatusRejected, req.Reason)
}

func (s *VisitServiceImpl) decide(ctx context.Context, id string, to approval.Status, reason string) (visit.VisitResponse, error) {
	session, err := s.guard.Decider(ctx)
	if err != nil {
		return visit.VisitResponse{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return visit.VisitResponse{}, err
	}
	if err := approvalservice.CheckDecision(session, current.EmployeeID, current.Status, to); err != nil {
		return visit.VisitResponse{}, err
	}

	d := approval.Approve(session.EmployeeID, s.clock.Now())
	if to == approval.StatusRejected {
		d = approval.Reject(session.EmployeeID, s.clock.Now(), reason)
	}
	decided, err := s.repo.Decide(ctx, id, d)
	if err != nil {
		return visit.VisitResponse{}, err
	}

	slog.Info("Visit report decided", "visit_id", id, "status", decided.Status, "approver_id", session.EmployeeID)

	kind := notification.TypeVisitApproved
	if decided.Status == approval.StatusRejected {
		kind = notification.TypeVisitRejected
	}
	message := fmt.Sprintf("Your visit to %s on %s was %s.",
		decided.ClientName, decided.VisitDate.Format("2 Jan 2006"), decided.Status)
	if decided.RejectNote != nil {
		message += " Reason: " + *decided.RejectNote
	}
	s.notifier.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: decided.EmployeeID,
		SenderID:    &session.EmployeeID,
		Type:        kind,
		Title:       "Visit report " + string(decided.Status),
		Message:     message,
		Data: map[string]any{
			"visit_id":   decided.ID,
			"visit_date": decided.VisitDate.Format(time.DateOnly),
		},
	})

	return visit.ToResponse(decided), nil
}
