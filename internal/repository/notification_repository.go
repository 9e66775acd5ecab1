package repository

import (
	"context"
	"homeservice-booking/internal/model"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, page, limit int64) ([]*model.Notification, error)

	// MarkRead flags a notification owned by userID as read
	MarkRead(ctx context.Context, id, userID string) (*model.Notification, error)
}
