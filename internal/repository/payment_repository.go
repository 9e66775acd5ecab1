package repository

import (
	"context"
	"homeservice-booking/internal/model"
)

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetByBookingID(ctx context.Context, bookingID string) (*model.Payment, error)
	Delete(ctx context.Context, id string) error

	// Transition applies change only while the payment is in one of change.From.
	// Returns ErrPaymentStateConflict otherwise.
	Transition(ctx context.Context, id string, change model.PaymentChange) (*model.Payment, error)

	// ListByStatus returns up to limit payments in status, oldest update first
	ListByStatus(ctx context.Context, status model.PaymentStatus, limit int64) ([]*model.Payment, error)
}
