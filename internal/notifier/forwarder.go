package notifier

import (
	"context"
	"homeservice-booking/internal/model"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// JSONPublisher publishes a JSON body under a routing key
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BookingEvent is the message other services consume from the booking exchange
type BookingEvent struct {
	Event      string           `json:"event"`
	Version    int              `json:"version"`
	OccurredAt string           `json:"occurred_at"`
	Data       BookingEventData `json:"data"`
}

type BookingEventData struct {
	BookingID     string  `json:"booking_id"`
	CustomerID    string  `json:"customer_id"`
	WorkerID      string  `json:"worker_id"`
	Status        string  `json:"status"`
	PaymentMethod string  `json:"payment_method"`
	TotalAmount   float64 `json:"total_amount"`
	IsPaid        bool    `json:"is_paid"`
	CancelledBy   string  `json:"cancelled_by,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// AMQPForwarder republishes lifecycle events to a message broker
type AMQPForwarder struct {
	pub     JSONPublisher
	timeout time.Duration
	logger  logrus.FieldLogger
	wg      sync.WaitGroup
}

func NewAMQPForwarder(pub JSONPublisher, timeout time.Duration, logger logrus.FieldLogger) *AMQPForwarder {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AMQPForwarder{pub: pub, timeout: timeout, logger: logger}
}

// RoutingKey maps booking_created to booking.created
func RoutingKey(t model.NotificationType) string {
	return strings.Replace(string(t), "_", ".", 1)
}

func (f *AMQPForwarder) Handle(ctx context.Context, event model.Event) {
	msg := BookingEvent{
		Event:      RoutingKey(event.Type),
		Version:    1,
		OccurredAt: event.OccurredAt.UTC().Format(time.RFC3339),
		Data: BookingEventData{
			BookingID:     event.Booking.ID,
			CustomerID:    event.Booking.CustomerID,
			WorkerID:      event.Booking.WorkerID,
			Status:        string(event.Booking.Status),
			PaymentMethod: string(event.Booking.PaymentMethod),
			TotalAmount:   event.Booking.TotalAmount,
			IsPaid:        event.Booking.IsPaid,
			CancelledBy:   string(event.Booking.CancelledBy),
			Reason:        event.Reason,
		},
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()

		if err := f.pub.PublishJSON(ctx, msg.Event, msg); err != nil {
			f.logger.WithError(err).WithFields(logrus.Fields{
				"routing_key": msg.Event,
				"booking_id":  msg.Data.BookingID,
			}).Warn("booking event not forwarded")
		}
	}()
}

// Wait blocks until all in-flight publishes finish
func (f *AMQPForwarder) Wait() {
	f.wg.Wait()
}
