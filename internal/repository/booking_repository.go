package repository

import (
	"context"
	"homeservice-booking/internal/model"
	"time"
)

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	Delete(ctx context.Context, id string) error

	// HasOverlap reports whether the worker holds a non-cancelled booking overlapping slot on date
	HasOverlap(ctx context.Context, workerID string, date time.Time, slot model.TimeSlot) (bool, error)

	// HoldSlot claims hold's interval on the worker's calendar. It fails with
	// ErrSlotUnavailable if any existing hold on that date overlaps.
	HoldSlot(ctx context.Context, hold model.SlotHold) error
	ReleaseSlot(ctx context.Context, workerID string, date time.Time, bookingID string) error

	// ListOrphanHolds returns holds older than cutoff whose booking was never
	// stored or has since been cancelled
	ListOrphanHolds(ctx context.Context, cutoff time.Time, limit int64) ([]model.SlotHold, error)

	// UpdateStatus applies change only if the booking is still in change.From.
	// Returns ErrConcurrentModification when another write got there first.
	UpdateStatus(ctx context.Context, id string, change model.StatusChange) (*model.Booking, error)

	SetPayment(ctx context.Context, id, paymentID string) error
	MarkPaid(ctx context.Context, id string) error
}
