package notification

import (
	"context"
)

type Service interface {
	// Notify queues a notification for persistence and live delivery.
	Notify(ctx context.Context, req CreateNotificationRequest)

	List(ctx context.Context, page, pageSize int, unreadOnly bool) (NotificationListResponse, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) (int64, error)

	// Subscribe streams notifications for employeeID until ctx ends. The
	// caller resolves employeeID from a verified stream token.
	Subscribe(ctx context.Context, employeeID string) (<-chan SSEEvent, func())

	// Stop drains the queue.
	Stop()
}
