package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveApproved    NotificationType = "leave_approved"
	TypeLeaveRejected    NotificationType = "leave_rejected"
	TypeOvertimeApproved NotificationType = "overtime_approved"
	TypeOvertimeRejected NotificationType = "overtime_rejected"
	TypeVisitApproved    NotificationType = "visit_approved"
	TypeVisitRejected    NotificationType = "visit_rejected"
	TypePayslipPublished NotificationType = "payslip_published"
	TypeNewsPublished    NotificationType = "news_published"
)

// Notification is addressed to an employee.
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]any
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
