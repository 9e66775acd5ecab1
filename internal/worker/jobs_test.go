package worker

import (
	"context"
	"errors"
	"homeservice-booking/internal/model"
	apperrors "homeservice-booking/pkg/errors"
	"homeservice-booking/pkg/logger"
	"strings"
	"testing"
	"time"
)

type staleList struct {
	items  []*model.CouponReservation
	cutoff time.Time
}

func (s *staleList) ListStale(_ context.Context, cutoff time.Time, _ int64) ([]*model.CouponReservation, error) {
	s.cutoff = cutoff
	return s.items, nil
}

type bookingSet map[string]bool

func (b bookingSet) GetByID(_ context.Context, id string) (*model.Booking, error) {
	if b[id] {
		return &model.Booking{ID: id}, nil
	}
	return nil, apperrors.ErrBookingNotFound
}

type settler struct {
	confirmed []string
	released  []string
	settled   map[string]bool
}

func (s *settler) Confirm(_ context.Context, r *model.CouponReservation) error {
	if s.settled[r.ID] {
		return apperrors.ErrReservationSettled
	}
	s.confirmed = append(s.confirmed, r.ID)
	return nil
}

func (s *settler) Release(_ context.Context, r *model.CouponReservation) error {
	if s.settled[r.ID] {
		return apperrors.ErrReservationSettled
	}
	s.released = append(s.released, r.ID)
	return nil
}

func TestReservationSweeper(t *testing.T) {
	list := &staleList{items: []*model.CouponReservation{
		{ID: "r-1", BookingID: "b-1"},
		{ID: "r-2", BookingID: "b-gone"},
		{ID: "r-3", BookingID: "b-raced"},
	}}
	s := &settler{settled: map[string]bool{"r-3": true}}
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	sweeper := NewReservationSweeper(list, bookingSet{"b-1": true}, s, 10*time.Minute, logger.Discard())
	sweeper.now = func() time.Time { return now }

	if err := sweeper.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !list.cutoff.Equal(now.Add(-10 * time.Minute)) {
		t.Errorf("cutoff = %v", list.cutoff)
	}
	if len(s.confirmed) != 1 || s.confirmed[0] != "r-1" {
		t.Errorf("confirmed = %v, want [r-1]", s.confirmed)
	}
	if len(s.released) != 1 || s.released[0] != "r-2" {
		t.Errorf("released = %v, want [r-2]", s.released)
	}
}

type bookingMap map[string]*model.Booking

func (b bookingMap) GetByID(_ context.Context, id string) (*model.Booking, error) {
	if booking, ok := b[id]; ok {
		return booking, nil
	}
	return nil, apperrors.ErrBookingNotFound
}

func TestReservationSweeperDefersBookingAwaitingPayment(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	ttl := 10 * time.Minute
	list := &staleList{items: []*model.CouponReservation{
		{ID: "r-slow", BookingID: "b-slow", CreatedAt: now.Add(-15 * time.Minute)},
		{ID: "r-stuck", BookingID: "b-stuck", CreatedAt: now.Add(-25 * time.Minute)},
		{ID: "r-paid", BookingID: "b-paid", CreatedAt: now.Add(-15 * time.Minute)},
		{ID: "r-cash", BookingID: "b-cash", CreatedAt: now.Add(-15 * time.Minute)},
	}}
	bookings := bookingMap{
		"b-slow":  {ID: "b-slow", PaymentMethod: model.PaymentOnline},
		"b-stuck": {ID: "b-stuck", PaymentMethod: model.PaymentOnline},
		"b-paid":  {ID: "b-paid", PaymentMethod: model.PaymentOnline, PaymentID: "p-1"},
		"b-cash":  {ID: "b-cash", PaymentMethod: model.PaymentCash},
	}
	s := &settler{}

	sweeper := NewReservationSweeper(list, bookings, s, ttl, logger.Discard())
	sweeper.now = func() time.Time { return now }
	if err := sweeper.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := strings.Join(s.confirmed, ","); got != "r-stuck,r-paid,r-cash" {
		t.Errorf("confirmed = %s, want r-stuck,r-paid,r-cash", got)
	}
	if len(s.released) != 0 {
		t.Errorf("released = %v, want none", s.released)
	}
}

type holdStore struct {
	orphans  []model.SlotHold
	cutoff   time.Time
	released []string
	failFor  string
}

func (h *holdStore) ListOrphanHolds(_ context.Context, cutoff time.Time, _ int64) ([]model.SlotHold, error) {
	h.cutoff = cutoff
	return h.orphans, nil
}

func (h *holdStore) ReleaseSlot(_ context.Context, _ string, _ time.Time, bookingID string) error {
	if bookingID == h.failFor {
		return errors.New("write failed")
	}
	h.released = append(h.released, bookingID)
	return nil
}

func TestSlotHoldSweeper(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	store := &holdStore{
		orphans: []model.SlotHold{
			{WorkerID: "work-1", BookingID: "b-crashed"},
			{WorkerID: "work-1", BookingID: "b-broken"},
			{WorkerID: "work-2", BookingID: "b-cancelled"},
		},
		failFor: "b-broken",
	}

	sweeper := NewSlotHoldSweeper(store, 10*time.Minute, logger.Discard())
	sweeper.now = func() time.Time { return now }
	if err := sweeper.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !store.cutoff.Equal(now.Add(-10 * time.Minute)) {
		t.Errorf("cutoff = %v", store.cutoff)
	}
	if got := strings.Join(store.released, ","); got != "b-crashed,b-cancelled" {
		t.Errorf("released = %s, want b-crashed,b-cancelled", got)
	}
}

type refundRunner struct {
	n   int
	err error
}

func (r refundRunner) ProcessRefunds(context.Context) (int, error) { return r.n, r.err }

func TestRefundProcessor(t *testing.T) {
	if err := NewRefundProcessor(refundRunner{n: 2}, logger.Discard()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := errors.New("store down")
	if err := NewRefundProcessor(refundRunner{err: want}, logger.Discard()).Run(context.Background()); !errors.Is(err, want) {
		t.Fatalf("Run() error = %v, want %v", err, want)
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(time.Second, logger.Discard())
	if err := s.Add("broken", "not a schedule", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
	if err := s.Add("sweep", "@every 5m", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
}
