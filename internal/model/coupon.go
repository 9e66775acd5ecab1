package model

import "time"

// CouponType selects how a coupon value is interpreted
type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

// Coupon represents a promotional code
type Coupon struct {
	ID                   string     `bson:"_id" json:"id"`
	Code                 string     `bson:"code" json:"code"`
	Type                 CouponType `bson:"type" json:"type"`
	Value                float64    `bson:"value" json:"value"`
	MaxDiscount          float64    `bson:"max_discount,omitempty" json:"maxDiscount,omitempty"`
	MinOrderValue        float64    `bson:"min_order_value" json:"minOrderValue"`
	ValidFrom            time.Time  `bson:"valid_from" json:"validFrom"`
	ValidUntil           time.Time  `bson:"valid_until" json:"validUntil"`
	MaxUsage             int64      `bson:"max_usage" json:"maxUsage"`
	UsageCount           int64      `bson:"usage_count" json:"usageCount"`
	ApplicableServices   []string   `bson:"applicable_services,omitempty" json:"applicableServices,omitempty"`
	ApplicableCategories []string   `bson:"applicable_categories,omitempty" json:"applicableCategories,omitempty"`
	IsActive             bool       `bson:"is_active" json:"isActive"`
	CreatedAt            time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `bson:"updated_at" json:"updatedAt"`
}

// CouponTarget identifies what a coupon is being applied to
type CouponTarget struct {
	ServiceID  string
	CategoryID string
}

// ReservationStatus tracks a tentative coupon redemption
type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "reserved"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationReleased  ReservationStatus = "released"
)

// CouponReservation holds one usage of a coupon for one booking
type CouponReservation struct {
	ID         string            `bson:"_id" json:"id"`
	CouponID   string            `bson:"coupon_id" json:"couponId"`
	CouponCode string            `bson:"coupon_code" json:"couponCode"` // Denormalized for querying
	BookingID  string            `bson:"booking_id" json:"bookingId"`  // Used for unique index
	CustomerID string            `bson:"customer_id" json:"customerId"`
	Status     ReservationStatus `bson:"status" json:"status"`
	CreatedAt  time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time         `bson:"updated_at" json:"updatedAt"`
}

// CreateCouponRequest represents the request to create a coupon
type CreateCouponRequest struct {
	Code                 string     `json:"code" binding:"required"`
	Type                 CouponType `json:"type" binding:"required,oneof=percentage fixed"`
	Value                float64    `json:"value" binding:"required,gt=0"`
	MaxDiscount          float64    `json:"maxDiscount" binding:"gte=0"`
	MinOrderValue        float64    `json:"minOrderValue" binding:"gte=0"`
	ValidFrom            time.Time  `json:"validFrom" binding:"required"`
	ValidUntil           time.Time  `json:"validUntil" binding:"required"`
	MaxUsage             int64      `json:"maxUsage" binding:"gte=0"`
	ApplicableServices   []string   `json:"applicableServices"`
	ApplicableCategories []string   `json:"applicableCategories"`
}

// ValidateCouponRequest previews a coupon against a worker service
type ValidateCouponRequest struct {
	CouponCode      string `json:"couponCode" binding:"required"`
	WorkerServiceID string `json:"workerServiceId" binding:"required"`
}

// CouponPreview is the outcome of a coupon preview
type CouponPreview struct {
	Coupon         *Coupon        `json:"coupon"`
	PriceBreakdown PriceBreakdown `json:"priceBreakdown"`
}

// CouponDetailsResponse represents the response for coupon details
type CouponDetailsResponse struct {
	Coupon     *Coupon  `json:"coupon"`
	Remaining  int64    `json:"remaining"` // -1 when uncapped
	RedeemedBy []string `json:"redeemedBy"`
}
