// Package approval holds the access rules shared by the leave, overtime and
// visit workflows.
package approval

import (
	"context"
	"math"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
)

// Permissions names what a workflow checks.
type Permissions struct {
	ViewAll user.Permission
	Decide  user.Permission
}

type Guard struct {
	authorizer rbac.Authorizer
	perms      Permissions
}

func NewGuard(authorizer rbac.Authorizer, perms Permissions) Guard {
	return Guard{authorizer: authorizer, perms: perms}
}

// Employee returns the caller, who must be linked to an employee record.
func (g Guard) Employee(ctx context.Context) (auth.Session, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return auth.Session{}, err
	}
	if session.EmployeeID == "" {
		return auth.Session{}, employee.ErrEmployeeNotFound
	}
	return session, nil
}

// CanView reports whether session may read a request owned by ownerID.
func (g Guard) CanView(session auth.Session, ownerID string) bool {
	return ownerID == session.EmployeeID || g.authorizer.Can(session.Role, g.perms.ViewAll)
}

// Viewer requires the view-all permission.
func (g Guard) Viewer(ctx context.Context) (auth.Session, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return auth.Session{}, err
	}
	if !g.authorizer.Can(session.Role, g.perms.ViewAll) {
		return auth.Session{}, approval.ErrForbidden
	}
	return session, nil
}

// Decider requires the decide permission and an employee record to sign with.
func (g Guard) Decider(ctx context.Context) (auth.Session, error) {
	session, err := g.Employee(ctx)
	if err != nil {
		return auth.Session{}, err
	}
	if !g.authorizer.Can(session.Role, g.perms.Decide) {
		return auth.Session{}, approval.ErrForbidden
	}
	return session, nil
}

// CheckDecision rejects deciding on one's own or an already resolved request.
func CheckDecision(session auth.Session, ownerID string, current, to approval.Status) error {
	if ownerID == session.EmployeeID {
		return approval.ErrSelfDecision
	}
	return approval.Transition(current, to)
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
