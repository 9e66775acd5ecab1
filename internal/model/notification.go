package model

import "time"

// NotificationType is the closed set of business events users are told about
type NotificationType string

const (
	NotifyBookingCreated   NotificationType = "booking_created"
	NotifyBookingConfirmed NotificationType = "booking_confirmed"
	NotifyBookingUpdated   NotificationType = "booking_updated"
	NotifyBookingCancelled NotificationType = "booking_cancelled"
	NotifyBookingCompleted NotificationType = "booking_completed"
	NotifyPaymentSuccess   NotificationType = "payment_success"
	NotifyPaymentFailed    NotificationType = "payment_failed"
)

// Priority of a notification; high priority may also go out by SMS
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Notification is a persisted message to one user
type Notification struct {
	ID        string                 `bson:"_id" json:"id"`
	UserID    string                 `bson:"user_id" json:"userId"`
	Type      NotificationType       `bson:"type" json:"type"`
	Title     string                 `bson:"title" json:"title"`
	Message   string                 `bson:"message" json:"message"`
	Category  string                 `bson:"category" json:"category"`
	Priority  Priority               `bson:"priority" json:"priority"`
	IsRead    bool                   `bson:"is_read" json:"isRead"`
	Metadata  map[string]interface{} `bson:"metadata" json:"metadata"`
	ActionURL string                 `bson:"action_url,omitempty" json:"actionUrl,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"createdAt"`
	ReadAt    *time.Time             `bson:"read_at,omitempty" json:"readAt,omitempty"`
}
