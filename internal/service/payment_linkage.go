package service

import (
	"context"
	"errors"
	"homeservice-booking/internal/model"
	"homeservice-booking/internal/repository"
	apperrors "homeservice-booking/pkg/errors"
	"homeservice-booking/pkg/metrics"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrderRequest asks the gateway to open a payment order for a booking
type OrderRequest struct {
	BookingID  string
	CustomerID string
	Amount     float64
	Currency   string
}

// Order is the gateway's handle on an opened payment
type Order struct {
	Ref string
}

// RefundRequest asks the gateway to return money for a settled payment
type RefundRequest struct {
	PaymentRef string
	Amount     float64
	Reason     string
}

// Refund is the gateway's handle on an issued refund
type Refund struct {
	Ref string
}

// Gateway is the external payment provider
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	Refund(ctx context.Context, req RefundRequest) (*Refund, error)
}

const (
	refundBatchSize = 50

	// gatewayTimeout bounds order creation well inside the coupon
	// reservation TTL so the sweeper never settles a live request
	gatewayTimeout = 30 * time.Second
)

// PaymentLinkage ties bookings to payment records and reacts to their changes
type PaymentLinkage struct {
	payments repository.PaymentRepository
	bookings repository.BookingRepository
	gateway  Gateway
	events   EventPublisher
	currency string
	logger   logrus.FieldLogger
	now      func() time.Time

	gatewayTimeout time.Duration
}

// NewPaymentLinkage creates a new payment linkage
func NewPaymentLinkage(
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	gateway Gateway,
	events EventPublisher,
	currency string,
	logger logrus.FieldLogger,
) *PaymentLinkage {
	return &PaymentLinkage{
		payments: payments,
		bookings: bookings,
		gateway:  gateway,
		events:   events,
		currency: currency,
		logger:   logger,
		now:      time.Now,

		gatewayTimeout: gatewayTimeout,
	}
}

// AttachPayment opens a gateway order for booking, stores a pending Payment
// and writes its id back onto the booking
func (l *PaymentLinkage) AttachPayment(ctx context.Context, booking *model.Booking) (*model.Payment, error) {
	orderCtx, cancel := context.WithTimeout(ctx, l.gatewayTimeout)
	order, err := l.gateway.CreateOrder(orderCtx, OrderRequest{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		Amount:     booking.TotalAmount,
		Currency:   l.currency,
	})
	cancel()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPaymentGateway, err)
	}

	now := l.now().UTC()
	payment := &model.Payment{
		ID:         uuid.NewString(),
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		WorkerID:   booking.WorkerID,
		Amount:     booking.TotalAmount,
		Currency:   l.currency,
		Status:     model.PaymentPending,
		OrderRef:   order.Ref,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := l.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	if err := l.bookings.SetPayment(ctx, booking.ID, payment.ID); err != nil {
		if delErr := l.payments.Delete(context.WithoutCancel(ctx), payment.ID); delErr != nil {
			l.logger.WithError(delErr).WithField("payment_id", payment.ID).Error("failed to remove unlinked payment")
		}
		return nil, err
	}

	booking.PaymentID = payment.ID
	return payment, nil
}

// ReactToCancellation flags a settled online payment for refund.
// Cash bookings and unpaid payments are left untouched.
func (l *PaymentLinkage) ReactToCancellation(ctx context.Context, booking *model.Booking) error {
	if booking.PaymentMethod != model.PaymentOnline {
		return nil
	}

	payment, err := l.payments.GetByBookingID(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPaymentNotFound) {
			return nil
		}
		return err
	}
	if payment.Status != model.PaymentCompleted {
		return nil
	}

	_, err = l.payments.Transition(ctx, payment.ID, model.PaymentChange{
		From:         []model.PaymentStatus{model.PaymentCompleted},
		To:           model.PaymentRefundPending,
		RefundReason: refundReason(booking),
		UpdatedAt:    l.now().UTC(),
	})
	return err
}

// ReactToPaymentCallback applies a settled outcome to a booking's payment.
// Repeating an already-applied outcome is a no-op.
func (l *PaymentLinkage) ReactToPaymentCallback(ctx context.Context, cb model.PaymentCallback) (*model.Payment, error) {
	if cb.Status != model.PaymentCompleted && cb.Status != model.PaymentFailed {
		return nil, apperrors.Validation("payment callback status must be completed or failed")
	}

	payment, err := l.payments.GetByBookingID(ctx, cb.BookingID)
	if err != nil {
		return nil, err
	}
	if payment.Status == cb.Status || (cb.Status == model.PaymentCompleted && settledAfterPayment(payment.Status)) {
		return payment, nil
	}

	updated, err := l.payments.Transition(ctx, payment.ID, model.PaymentChange{
		From:          []model.PaymentStatus{model.PaymentPending, model.PaymentProcessing},
		To:            cb.Status,
		TransactionID: cb.TransactionID,
		FailureReason: cb.Reason,
		UpdatedAt:     l.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	booking, err := l.bookings.GetByID(ctx, cb.BookingID)
	if err != nil {
		return nil, err
	}

	if cb.Status == model.PaymentFailed {
		l.events.Publish(ctx, model.Event{
			Type:       model.NotifyPaymentFailed,
			Booking:    *booking,
			Recipients: []model.Recipient{model.CustomerOf(booking)},
			Reason:     cb.Reason,
			OccurredAt: l.now().UTC(),
		})
		return updated, nil
	}

	if err := l.bookings.MarkPaid(ctx, booking.ID); err != nil {
		return nil, err
	}
	booking.IsPaid = true

	// money arrived for a booking that was cancelled while the order was open
	if booking.Status == model.BookingCancelled {
		if err := l.ReactToCancellation(ctx, booking); err != nil {
			l.logger.WithError(err).WithField("booking_id", booking.ID).Error("failed to flag late payment for refund")
		}
	}

	l.events.Publish(ctx, model.Event{
		Type:       model.NotifyPaymentSuccess,
		Booking:    *booking,
		Recipients: []model.Recipient{model.CustomerOf(booking)},
		OccurredAt: l.now().UTC(),
	})
	return updated, nil
}

// ProcessRefunds pushes refund_pending payments through the gateway and
// returns how many were refunded
func (l *PaymentLinkage) ProcessRefunds(ctx context.Context) (int, error) {
	pending, err := l.payments.ListByStatus(ctx, model.PaymentRefundPending, refundBatchSize)
	if err != nil {
		return 0, err
	}

	refunded := 0
	for _, p := range pending {
		log := l.logger.WithFields(logrus.Fields{"payment_id": p.ID, "booking_id": p.BookingID})

		ref := p.TransactionID
		if ref == "" {
			ref = p.OrderRef
		}
		refund, err := l.gateway.Refund(ctx, RefundRequest{PaymentRef: ref, Amount: p.Amount, Reason: p.RefundReason})
		if err != nil {
			metrics.IncRefund("gateway_error")
			log.WithError(err).Warn("refund request failed; will retry")
			continue
		}

		if _, err := l.payments.Transition(ctx, p.ID, model.PaymentChange{
			From:      []model.PaymentStatus{model.PaymentRefundPending},
			To:        model.PaymentRefunded,
			RefundID:  refund.Ref,
			UpdatedAt: l.now().UTC(),
		}); err != nil {
			metrics.IncRefund("store_error")
			log.WithError(err).WithField("refund_id", refund.Ref).Error("refund issued but payment not updated")
			continue
		}

		metrics.IncRefund("refunded")
		refunded++
	}
	return refunded, nil
}

// settledAfterPayment is true for statuses only reachable after completion
func settledAfterPayment(s model.PaymentStatus) bool {
	return s == model.PaymentRefundPending || s == model.PaymentRefunded
}

func refundReason(b *model.Booking) string {
	reason := "booking cancelled by " + string(b.CancelledBy)
	if b.CancellationReason != "" {
		reason += ": " + b.CancellationReason
	}
	return reason
}
