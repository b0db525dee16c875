package news

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/news"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/markup"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPosts struct {
	items map[string]news.Post
	seq   int
}

func (m *memPosts) Create(_ context.Context, p news.Post) (news.Post, error) {
	m.seq++
	p.ID = fmt.Sprintf("post-%d", m.seq)
	m.items[p.ID] = p
	return p, nil
}

func (m *memPosts) GetByID(_ context.Context, id string) (news.Post, error) {
	p, ok := m.items[id]
	if !ok {
		return news.Post{}, news.ErrPostNotFound
	}
	return p, nil
}

func (m *memPosts) List(_ context.Context, _, _ int) ([]news.Post, int64, error) {
	var out []news.Post
	for _, p := range m.items {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *memPosts) Update(_ context.Context, p news.Post) (news.Post, error) {
	if _, ok := m.items[p.ID]; !ok {
		return news.Post{}, news.ErrPostNotFound
	}
	m.items[p.ID] = p
	return p, nil
}

func (m *memPosts) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return news.ErrPostNotFound
	}
	delete(m.items, id)
	return nil
}

type activeEmployees struct {
	employee.EmployeeRepository
	ids []string
}

func (a activeEmployees) ListActiveIDs(context.Context, time.Time) ([]string, error) {
	return a.ids, nil
}

type recordingNotifier struct {
	notification.Service
	sent []notification.CreateNotificationRequest
}

func (r *recordingNotifier) Notify(_ context.Context, req notification.CreateNotificationRequest) {
	r.sent = append(r.sent, req)
}

func as(employeeID string, role user.Role) context.Context {
	return auth.WithSession(context.Background(), auth.Session{UserID: "u-" + employeeID, EmployeeID: employeeID, Role: role})
}

func newTestService(t *testing.T) (news.NewsService, *recordingNotifier) {
	t.Helper()
	enforcer, err := rbac.NewDefaultEnforcer()
	require.NoError(t, err)
	n := &recordingNotifier{}
	svc := NewNewsService(&memPosts{items: map[string]news.Post{}},
		activeEmployees{ids: []string{"admin", "emp-1", "emp-2"}},
		markup.NewRenderer(), n, enforcer,
		clock.Fixed{T: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)})
	return svc, n
}

func TestNewsService_Create(t *testing.T) {
	svc, n := newTestService(t)

	_, err := svc.Create(as("emp-1", user.RoleEmployee), news.CreatePostRequest{Title: "x", Body: "y"})
	assert.ErrorIs(t, err, approval.ErrForbidden)

	post, err := svc.Create(as("admin", user.RoleAdmin), news.CreatePostRequest{
		Title: "Office Closed: Friday!",
		Body:  "The office is **closed** on Friday. <script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^office-closed-friday-[0-9a-f]{8}$`), post.Slug)
	assert.Contains(t, post.BodyHTML, "<strong>closed</strong>")
	assert.NotContains(t, post.BodyHTML, "<script")
	assert.Equal(t, "u-admin", post.AuthorID)

	require.Len(t, n.sent, 2, "author is not notified")
	for _, sent := range n.sent {
		assert.Equal(t, notification.TypeNewsPublished, sent.Type)
		assert.Equal(t, "The office is closed on Friday.", sent.Message)
	}
}

func TestNewsService_UpdateAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	admin := as("admin", user.RoleAdmin)

	post, err := svc.Create(admin, news.CreatePostRequest{Title: "Townhall", Body: "Monday"})
	require.NoError(t, err)

	body := "Moved to *Tuesday*"
	pinned := true
	updated, err := svc.Update(admin, news.UpdatePostRequest{ID: post.ID, Body: &body, Pinned: &pinned})
	require.NoError(t, err)
	assert.Equal(t, "Townhall", updated.Title)
	assert.Contains(t, updated.BodyHTML, "<em>Tuesday</em>")
	assert.True(t, updated.Pinned)

	got, err := svc.Get(as("emp-1", user.RoleEmployee), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Slug, got.Slug)

	list, err := svc.List(as("emp-1", user.RoleEmployee), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, list.Limit)
	assert.Len(t, list.Posts, 1)

	assert.ErrorIs(t, svc.Delete(as("emp-1", user.RoleEmployee), post.ID), approval.ErrForbidden)
	require.NoError(t, svc.Delete(admin, post.ID))
	_, err = svc.Get(admin, post.ID)
	assert.ErrorIs(t, err, news.ErrPostNotFound)
}

func TestSlugify(t *testing.T) {
	slug, err := slugify("!!!")
	require.NoError(t, err)
	assert.Len(t, slug, 8)

	slug, err = slugify("  Libur   Nasional 2026 ")
	require.NoError(t, err)
	assert.Regexp(t, `^libur-nasional-2026-[0-9a-f]{8}$`, slug)
}
