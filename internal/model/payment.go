package model

import "time"

// PaymentStatus is the settlement state of a payment
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentProcessing    PaymentStatus = "processing"
	PaymentCompleted     PaymentStatus = "completed"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefundPending PaymentStatus = "refund_pending"
	PaymentRefunded      PaymentStatus = "refunded"
)

// Payment is the financial record linked to an online booking
type Payment struct {
	ID            string        `bson:"_id" json:"id"`
	BookingID     string        `bson:"booking_id" json:"bookingId"`
	CustomerID    string        `bson:"customer_id" json:"customerId"`
	WorkerID      string        `bson:"worker_id" json:"workerId"`
	Amount        float64       `bson:"amount" json:"amount"`
	Currency      string        `bson:"currency" json:"currency"`
	Status        PaymentStatus `bson:"status" json:"status"`
	OrderRef      string        `bson:"order_ref" json:"orderRef"`
	TransactionID string        `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	FailureReason string        `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`
	RefundID      string        `bson:"refund_id,omitempty" json:"refundId,omitempty"`
	RefundReason  string        `bson:"refund_reason,omitempty" json:"refundReason,omitempty"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}

// PaymentChange is a conditional payment status write
type PaymentChange struct {
	From          []PaymentStatus
	To            PaymentStatus
	TransactionID string
	FailureReason string
	RefundID      string
	RefundReason  string
	UpdatedAt     time.Time
}

// PaymentCallback is a settled payment outcome reported by the gateway or an admin
type PaymentCallback struct {
	BookingID     string        `json:"bookingId" binding:"required"`
	Status        PaymentStatus `json:"status" binding:"required,oneof=completed failed"`
	TransactionID string        `json:"transactionId"`
	Reason        string        `json:"reason"`
}
