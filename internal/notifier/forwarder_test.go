package notifier

import (
	"context"
	"errors"
	"homeservice-booking/internal/model"
	"homeservice-booking/pkg/logger"
	"sync"
	"testing"
	"time"
)

type memPublisher struct {
	mu   sync.Mutex
	keys []string
	msgs []BookingEvent
	err  error
}

func (p *memPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, v.(BookingEvent))
	return nil
}

func TestAMQPForwarderPublishesEnvelope(t *testing.T) {
	pub := &memPublisher{}
	f := NewAMQPForwarder(pub, time.Second, logger.Discard())

	f.Handle(context.Background(), testEvent(model.NotifyBookingCancelled))
	f.Wait()

	if len(pub.keys) != 1 || pub.keys[0] != "booking.cancelled" {
		t.Fatalf("keys = %v", pub.keys)
	}
	msg := pub.msgs[0]
	if msg.Version != 1 || msg.Data.BookingID != "b-1" || msg.Data.Reason != "unavailable" || msg.OccurredAt != "2026-03-10T08:00:00Z" {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestAMQPForwarderSwallowsErrors(t *testing.T) {
	f := NewAMQPForwarder(&memPublisher{err: errors.New("channel closed")}, time.Second, logger.Discard())
	f.Handle(context.Background(), testEvent(model.NotifyBookingCreated))
	f.Wait()
}
