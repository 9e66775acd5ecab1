package model

import "time"

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in-progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// PaymentMethod selects how the customer settles the booking
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCash
}

// CancelledBy records who cancelled a booking
type CancelledBy string

const (
	CancelledByNone     CancelledBy = "none"
	CancelledByCustomer CancelledBy = "customer"
	CancelledByWorker   CancelledBy = "worker"
	CancelledByAdmin    CancelledBy = "admin"
)

// Discount is the coupon part of a pricing snapshot
type Discount struct {
	CouponCode     string  `bson:"coupon_code,omitempty" json:"couponCode,omitempty"`
	Percentage     float64 `bson:"percentage" json:"percentage"`
	DiscountAmount float64 `bson:"discount_amount" json:"discountAmount"`
}

// PriceBreakdown is the full pricing computation returned to the customer
type PriceBreakdown struct {
	BaseAmount  float64  `json:"baseAmount"`
	ServiceFee  float64  `json:"serviceFee"`
	SubTotal    float64  `json:"subTotal"`
	Discount    Discount `json:"discount"`
	TotalAmount float64  `json:"totalAmount"`
}

// Booking is a scheduled engagement between a customer and a worker
type Booking struct {
	ID                 string        `bson:"_id" json:"id"`
	CustomerID         string        `bson:"customer_id" json:"customerId"`
	WorkerID           string        `bson:"worker_id" json:"workerId"`
	WorkerServiceID    string        `bson:"worker_service_id" json:"workerServiceId"`
	AddressID          string        `bson:"address_id" json:"addressId"`
	BookingDate        time.Time     `bson:"booking_date" json:"bookingDate"`
	ScheduledTimeSlot  TimeSlot      `bson:"scheduled_time_slot" json:"scheduledTimeSlot"`
	BaseAmount         float64       `bson:"base_amount" json:"baseAmount"`
	ServiceFee         float64       `bson:"service_fee" json:"serviceFee"`
	SubTotal           float64       `bson:"sub_total" json:"subTotal"`
	Discount           Discount      `bson:"discount" json:"discount"`
	TotalAmount        float64       `bson:"total_amount" json:"totalAmount"`
	Status             BookingStatus `bson:"status" json:"status"`
	PaymentMethod      PaymentMethod `bson:"payment_method" json:"paymentMethod"`
	PaymentID          string        `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	IsPaid             bool          `bson:"is_paid" json:"isPaid"`
	CancelledBy        CancelledBy   `bson:"cancelled_by" json:"cancelledBy"`
	CancellationReason string        `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	WorkerResponseTime *time.Time    `bson:"worker_response_time,omitempty" json:"workerResponseTime,omitempty"`
	StartedAt          *time.Time    `bson:"started_at,omitempty" json:"startedAt,omitempty"`
	CompletedAt        *time.Time    `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CreatedAt          time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updatedAt"`
}

// IsParty reports whether userID is the booking's customer or assigned worker
func (b *Booking) IsParty(userID string) bool {
	return userID == b.CustomerID || userID == b.WorkerID
}

// ApplyPricing copies a price breakdown into the booking snapshot
func (b *Booking) ApplyPricing(p PriceBreakdown) {
	b.BaseAmount = p.BaseAmount
	b.ServiceFee = p.ServiceFee
	b.SubTotal = p.SubTotal
	b.Discount = p.Discount
	b.TotalAmount = p.TotalAmount
}

// StatusChange is a conditional status write; From is the expected prior status
type StatusChange struct {
	From               BookingStatus
	To                 BookingStatus
	CancelledBy        CancelledBy
	CancellationReason string
	WorkerResponseTime *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	UpdatedAt          time.Time
}

// BookingFilter narrows a booking listing
type BookingFilter struct {
	CustomerID string
	WorkerID   string
	Status     BookingStatus
	Page       int
	Limit      int
}

// SlotHold is one claimed interval on a worker's calendar for a date.
// A booking holds its slot from creation until it is cancelled or discarded.
type SlotHold struct {
	WorkerID    string    `bson:"worker_id" json:"workerId"`
	BookingDate time.Time `bson:"booking_date" json:"bookingDate"`
	BookingID   string    `bson:"booking_id" json:"bookingId"`
	Start       string    `bson:"start" json:"start"`
	End         string    `bson:"end" json:"end"`
	HeldAt      time.Time `bson:"held_at" json:"heldAt"`
}
