package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/google/uuid"
)

const eventName = "notification"

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	clock  clock.Clock
	config Config

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService starts the background workers. Call Stop to flush.
func NewNotificationService(repo notification.Repository, hub *sse.Hub, clk clock.Clock, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		clock:  clk,
		config: cfg,
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)
	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.persist(ctx, batch); err != nil {
			slog.Error("Notification batch insert failed", "worker", id, "count", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain whatever is still queued.
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
				default:
					flush()
					return
				}
			}
		}
	}
}

// persist inserts reqs and pushes each stored notification to live streams.
func (s *service) persist(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	now := s.clock.Now()
	notifications := make([]notification.Notification, 0, len(reqs))
	for _, req := range reqs {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate notification id: %w", err)
		}
		notifications = append(notifications, notification.Notification{
			ID:          id.String(),
			RecipientID: req.RecipientID,
			SenderID:    req.SenderID,
			Type:        req.Type,
			Title:       req.Title,
			Message:     req.Message,
			Data:        req.Data,
			CreatedAt:   now,
		})
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return err
	}
	slog.Debug("Notifications stored", "count", len(notifications))

	for _, n := range notifications {
		s.hub.Publish(n.RecipientID, sse.Event{Name: eventName, Data: notification.ToResponse(n)})
	}
	return nil
}

// Notify never fails the caller. A full queue falls back to a direct insert.
func (s *service) Notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if req.RecipientID == "" {
		return
	}

	select {
	case <-s.stopCh:
	default:
		select {
		case s.queue <- req:
			return
		default:
		}
	}

	if err := s.persist(context.WithoutCancel(ctx), []notification.CreateNotificationRequest{req}); err != nil {
		slog.Error("Direct notification insert failed", "recipient_id", req.RecipientID, "type", req.Type, "error", err)
	}
}

func recipient(ctx context.Context) (string, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return "", err
	}
	if session.EmployeeID == "" {
		return "", employee.ErrEmployeeNotFound
	}
	return session.EmployeeID, nil
}

func (s *service) List(ctx context.Context, page, pageSize int, unreadOnly bool) (notification.NotificationListResponse, error) {
	employeeID, err := recipient(ctx)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.ListByRecipient(ctx, employeeID, page, pageSize, unreadOnly)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}

	unreadCount, err := s.repo.UnreadCount(ctx, employeeID)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}

	return notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *service) MarkAsRead(ctx context.Context, id string) error {
	employeeID, err := recipient(ctx)
	if err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, employeeID, id)
}

func (s *service) MarkAllAsRead(ctx context.Context) (int64, error) {
	employeeID, err := recipient(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllAsRead(ctx, employeeID)
}

func (s *service) Subscribe(ctx context.Context, employeeID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(employeeID)

	out := make(chan notification.SSEEvent, 10)
	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Name, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
