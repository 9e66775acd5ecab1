package service

import (
	"context"
	"homeservice-booking/internal/model"
	"homeservice-booking/internal/repository"
)

// NotificationService exposes a user's persisted notifications
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns a page of p's notifications, newest first
func (s *NotificationService) List(ctx context.Context, p model.Principal, page, limit int64) ([]*model.Notification, error) {
	return s.repo.ListByUser(ctx, p.ID, page, limit)
}

// MarkRead flags one of p's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, p model.Principal, id string) (*model.Notification, error) {
	return s.repo.MarkRead(ctx, id, p.ID)
}
