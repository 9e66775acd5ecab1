package notifier

import (
	"context"
	"homeservice-booking/internal/model"
	"homeservice-booking/pkg/metrics"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 10 * time.Second

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}

// UserLookup resolves a recipient's contact details
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// Dispatcher turns lifecycle events into per-recipient notifications.
// Each recipient is delivered on its own goroutine; failures are logged
// and never reach the publisher.
type Dispatcher struct {
	store     NotificationStore
	users     UserLookup
	templates *Templates
	pusher    Pusher
	sms       SMSSender
	timeout   time.Duration
	logger    logrus.FieldLogger
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher. sms may be nil to disable text messages.
func NewDispatcher(
	store NotificationStore,
	users UserLookup,
	templates *Templates,
	pusher Pusher,
	sms SMSSender,
	timeout time.Duration,
	logger logrus.FieldLogger,
) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		store:     store,
		users:     users,
		templates: templates,
		pusher:    pusher,
		sms:       sms,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle starts delivery to every recipient and returns immediately
func (d *Dispatcher) Handle(ctx context.Context, event model.Event) {
	detached := context.WithoutCancel(ctx)
	for _, r := range event.Recipients {
		d.wg.Add(1)
		go d.deliver(detached, event, r)
	}
}

// Wait blocks until all in-flight deliveries finish
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, event model.Event, r model.Recipient) {
	defer d.wg.Done()

	log := d.logger.WithFields(logrus.Fields{
		"type":       event.Type,
		"booking_id": event.Booking.ID,
		"user_id":    r.UserID,
	})
	defer func() {
		if rec := recover(); rec != nil {
			metrics.IncNotification("store", "panic")
			log.WithField("panic", rec).Error("notification delivery panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	rendered, err := d.templates.Render(event, r.Role)
	if err != nil {
		metrics.IncNotification("store", "error")
		log.WithError(err).Warn("notification not rendered")
		return
	}

	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    r.UserID,
		Type:      event.Type,
		Title:     rendered.Title,
		Message:   rendered.Message,
		Category:  rendered.Category,
		Priority:  rendered.Priority,
		ActionURL: rendered.ActionURL,
		Metadata:  metadata(event),
		CreatedAt: d.now().UTC(),
	}
	if err := d.store.Create(ctx, n); err != nil {
		metrics.IncNotification("store", "error")
		log.WithError(err).Warn("notification not stored")
		return
	}
	metrics.IncNotification("store", "ok")

	if err := d.pusher.Push(ctx, r.UserID, n); err != nil {
		metrics.IncNotification("push", "error")
		log.WithError(err).Warn("real-time push failed")
	} else {
		metrics.IncNotification("push", "ok")
	}

	if n.Priority == model.PriorityHigh && d.sms != nil {
		d.sendSMS(ctx, log, r.UserID, n)
	}
}

func (d *Dispatcher) sendSMS(ctx context.Context, log logrus.FieldLogger, userID string, n *model.Notification) {
	user, err := d.users.GetUser(ctx, userID)
	if err != nil {
		metrics.IncNotification("sms", "error")
		log.WithError(err).Warn("sms recipient lookup failed")
		return
	}
	if user.Phone == "" {
		return
	}
	if err := d.sms.Send(ctx, user.Phone, n.Title+": "+n.Message); err != nil {
		metrics.IncNotification("sms", "error")
		log.WithError(err).Warn("sms not sent")
		return
	}
	metrics.IncNotification("sms", "ok")
}

func metadata(event model.Event) map[string]interface{} {
	m := map[string]interface{}{
		"bookingId": event.Booking.ID,
		"status":    string(event.Booking.Status),
		"timestamp": event.OccurredAt.UTC().Format(time.RFC3339),
	}
	if event.Reason != "" {
		m["reason"] = event.Reason
	}
	return m
}
