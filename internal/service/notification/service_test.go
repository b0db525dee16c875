package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu    sync.Mutex
	items []notification.Notification
}

func (m *memRepo) CreateBatch(_ context.Context, ns []notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, ns...)
	return nil
}

func (m *memRepo) ListByRecipient(_ context.Context, recipientID string, _, _ int, unreadOnly bool) ([]notification.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []notification.Notification
	for _, n := range m.items {
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	_, n, err := m.ListByRecipient(ctx, recipientID, 1, 100, true)
	return n, err
}

func (m *memRepo) MarkAsRead(_ context.Context, recipientID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.items {
		if n.ID == id && n.RecipientID == recipientID {
			m.items[i].IsRead = true
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (m *memRepo) MarkAllAsRead(_ context.Context, recipientID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].RecipientID == recipientID && !m.items[i].IsRead {
			m.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func employeeCtx(id string) context.Context {
	return auth.WithSession(context.Background(), auth.Session{UserID: "u-" + id, EmployeeID: id, Role: user.RoleEmployee})
}

func TestService_NotifyPersistsAndStreams(t *testing.T) {
	repo := &memRepo{}
	hub := sse.NewHub()
	svc := NewNotificationService(repo, hub, clock.Fixed{T: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}, Config{
		BatchSize: 1, FlushInterval: 10 * time.Millisecond, WorkerCount: 1,
	})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, cleanup := svc.Subscribe(ctx, "emp-1")
	defer cleanup()

	svc.Notify(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "emp-1", Type: notification.TypeLeaveApproved, Title: "Leave approved", Message: "ok",
	})

	select {
	case ev := <-stream:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "Leave approved", ev.Data.Title)
		assert.NotEmpty(t, ev.Data.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not streamed")
	}

	list, err := svc.List(employeeCtx("emp-1"), 1, 20, false)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.EqualValues(t, 1, list.UnreadCount)

	require.NoError(t, svc.MarkAsRead(employeeCtx("emp-1"), list.Notifications[0].ID))
	assert.ErrorIs(t, svc.MarkAsRead(employeeCtx("emp-2"), list.Notifications[0].ID), notification.ErrNotificationNotFound)

	n, err := svc.MarkAllAsRead(employeeCtx("emp-1"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_StopFlushesQueue(t *testing.T) {
	repo := &memRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), clock.Fixed{T: time.Now()}, Config{
		BatchSize: 100, FlushInterval: time.Hour, WorkerCount: 2,
	})

	for i := 0; i < 5; i++ {
		svc.Notify(context.Background(), notification.CreateNotificationRequest{RecipientID: "emp-1", Title: "t"})
	}
	svc.Stop()
	svc.Stop()

	assert.Equal(t, 5, repo.count())

	// After Stop, Notify writes directly.
	svc.Notify(context.Background(), notification.CreateNotificationRequest{RecipientID: "emp-1", Title: "late"})
	assert.Equal(t, 6, repo.count())
}

func TestService_RequiresEmployee(t *testing.T) {
	svc := NewNotificationService(&memRepo{}, sse.NewHub(), clock.Fixed{}, Config{})
	defer svc.Stop()

	_, err := svc.List(context.Background(), 1, 20, false)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}
