package auth

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUsers struct {
	byID map[string]user.User
}

func newFakeUsers(users ...user.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]user.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, u user.User) (user.User, error) {
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	u, err := f.GetByEmail(ctx, email)
	if err != nil {
		return user.User{}, err
	}
	provider := "google"
	u.OAuthProvider, u.OAuthProviderID = &provider, &googleID
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id string, role user.Role) error {
	u := f.byID[id]
	u.Role = role
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	u := f.byID[id]
	u.PasswordHash = &hash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, id string, active bool) error {
	u := f.byID[id]
	u.IsActive = active
	f.byID[id] = u
	return nil
}

type fakeRefreshTokens struct {
	owner   map[string]string
	revoked map[string]bool
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{owner: map[string]string{}, revoked: map[string]bool{}}
}

func (f *fakeRefreshTokens) CreateRefreshToken(_ context.Context, userID, token string, _ int64, _ auth.SessionTrackingRequest) error {
	f.owner[token] = userID
	return nil
}

func (f *fakeRefreshTokens) IsRefreshTokenRevoked(_ context.Context, token string) (string, bool, error) {
	userID, ok := f.owner[token]
	if !ok {
		return "", true, nil
	}
	return userID, f.revoked[token], nil
}

func (f *fakeRefreshTokens) RevokeRefreshToken(_ context.Context, token string) error {
	f.revoked[token] = true
	return nil
}

func newTestUser(t *testing.T, password string, active bool) user.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	empID := "emp-1"
	return user.User{
		ID:           "user-1",
		Email:        "ana@example.com",
		PasswordHash: &hash,
		Role:         user.RoleEmployee,
		IsActive:     active,
		EmployeeID:   &empID,
	}
}

func newTestService(t *testing.T, users *fakeUsers, refresh *fakeRefreshTokens) (auth.AuthService, jwt.Service) {
	t.Helper()
	enforcer, err := rbac.NewDefaultEnforcer()
	require.NoError(t, err)
	tokens := jwt.NewJWTService(testSecret, time.Hour, 24*time.Hour, false)
	return NewAuthService(passthroughTx{}, users, tokens, refresh, enforcer), tokens
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	track := auth.SessionTrackingRequest{IPAddress: "127.0.0.1", UserAgent: "test"}

	t.Run("success", func(t *testing.T) {
		refresh := newFakeRefreshTokens()
		svc, _ := newTestService(t, newFakeUsers(newTestUser(t, "password123", true)), refresh)

		resp, err := svc.Login(ctx, auth.LoginRequest{Email: "ana@example.com", Password: "password123"}, track)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "user-1", refresh.owner[resp.RefreshToken])
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newTestService(t, newFakeUsers(newTestUser(t, "password123", true)), newFakeRefreshTokens())
		_, err := svc.Login(ctx, auth.LoginRequest{Email: "ana@example.com", Password: "nope-nope"}, track)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _ := newTestService(t, newFakeUsers(), newFakeRefreshTokens())
		_, err := svc.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: "password123"}, track)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive", func(t *testing.T) {
		svc, _ := newTestService(t, newFakeUsers(newTestUser(t, "password123", false)), newFakeRefreshTokens())
		_, err := svc.Login(ctx, auth.LoginRequest{Email: "ana@example.com", Password: "password123"}, track)
		assert.ErrorIs(t, err, auth.ErrAccountInactive)
	})
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	refresh := newFakeRefreshTokens()
	svc, _ := newTestService(t, newFakeUsers(newTestUser(t, "password123", true)), refresh)

	tokens, err := svc.Login(ctx, auth.LoginRequest{Email: "ana@example.com", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	access, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, access.AccessToken)

	require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	// An access token is not a refresh token.
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(newTestUser(t, "password123", true))
	svc, _ := newTestService(t, users, newFakeRefreshTokens())

	_, err := svc.LoginWithGoogle(ctx, "stranger@example.com", "g-9", auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrOAuthEmailNotLinked)

	resp, err := svc.LoginWithGoogle(ctx, "ana@example.com", "g-1", auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, users.byID["user-1"].OAuthProviderID)
	assert.Equal(t, "g-1", *users.byID["user-1"].OAuthProviderID)
}

func TestAuthService_ChangePasswordAndMe(t *testing.T) {
	users := newFakeUsers(newTestUser(t, "password123", true))
	svc, _ := newTestService(t, users, newFakeRefreshTokens())

	_, err := svc.Me(context.Background())
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	ctx := auth.WithSession(context.Background(), auth.Session{
		UserID: "user-1", EmployeeID: "emp-1", Email: "ana@example.com", Role: user.RoleEmployee,
	})

	err = svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "wrong-one", NewPassword: "newpassword1"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"}))
	_, err = svc.Login(context.Background(), auth.LoginRequest{Email: "ana@example.com", Password: "newpassword1"}, auth.SessionTrackingRequest{})
	assert.NoError(t, err)

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", me.EmployeeID)
	assert.Contains(t, me.Permissions, string(user.PermissionAttendanceCreate))
	assert.NotContains(t, me.Permissions, string(user.PermissionLeaveApprove))
}
