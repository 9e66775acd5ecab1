package repository

import (
	"context"
	"homeservice-booking/internal/model"
	"time"
)

// ReservationRepository defines the interface for coupon reservation data operations
type ReservationRepository interface {
	// CreateReservation creates a new reservation record
	CreateReservation(ctx context.Context, reservation *model.CouponReservation) error

	// UpdateStatus moves a reservation from one status to another.
	// Returns ErrReservationSettled if it is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to model.ReservationStatus) error

	// ListStale returns reservations still reserved that were created before cutoff
	ListStale(ctx context.Context, cutoff time.Time, limit int64) ([]*model.CouponReservation, error)

	// ListByCoupon retrieves all confirmed reservations for a coupon
	ListByCoupon(ctx context.Context, couponID string) ([]*model.CouponReservation, error)
}
