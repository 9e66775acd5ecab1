package repository

import (
	"context"
	"homeservice-booking/internal/model"
)

// CouponRepository defines the interface for coupon data operations
type CouponRepository interface {
	// CreateCoupon creates a new coupon
	CreateCoupon(ctx context.Context, coupon *model.Coupon) error

	// GetCouponByCode retrieves a coupon by its normalized code
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)

	// IncrementUsage atomically adds one use while usage is below the cap.
	// Returns ErrCouponExhausted when the cap is already reached.
	IncrementUsage(ctx context.Context, couponID string) error

	// DecrementUsage atomically gives back one use, never going below zero
	DecrementUsage(ctx context.Context, couponID string) error
}
