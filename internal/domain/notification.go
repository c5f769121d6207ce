package domain

import "time"

// NotificationKind classifies portal notifications.
type NotificationKind string

const (
	NotifyReportPublished NotificationKind = "report_published"
	NotifyMessageReceived NotificationKind = "message_received"
	NotifyUploadProcessed NotificationKind = "upload_processed"
)

// Notification is one badge entry for a user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    int              `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body,omitempty"`
	RefID     string           `json:"ref_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
