package auth

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// Session is the authenticated caller resolved from an access token.
type Session struct {
	UserID     string
	EmployeeID string
	Email      string
	Role       user.Role
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns ErrUnauthenticated when no session was attached.
func SessionFromContext(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s.UserID == "" {
		return Session{}, ErrUnauthenticated
	}
	return s, nil
}
