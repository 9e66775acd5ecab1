package worker

import (
	"context"
	"errors"
	"homeservice-booking/internal/model"
	apperrors "homeservice-booking/pkg/errors"
	"time"

	"github.com/sirupsen/logrus"
)

const sweepBatchSize = 100

// StaleReservations lists reservations left in reserved state
type StaleReservations interface {
	ListStale(ctx context.Context, cutoff time.Time, limit int64) ([]*model.CouponReservation, error)
}

// BookingLookup checks whether a reservation's booking was stored
type BookingLookup interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
}

// ReservationSettler confirms or releases a coupon reservation
type ReservationSettler interface {
	Confirm(ctx context.Context, reservation *model.CouponReservation) error
	Release(ctx context.Context, reservation *model.CouponReservation) error
}

// ReservationSweeper settles coupon reservations abandoned by a crash between
// redemption and booking creation
type ReservationSweeper struct {
	reservations StaleReservations
	bookings     BookingLookup
	coupons      ReservationSettler
	ttl          time.Duration
	logger       logrus.FieldLogger
	now          func() time.Time
}

func NewReservationSweeper(reservations StaleReservations, bookings BookingLookup, coupons ReservationSettler, ttl time.Duration, logger logrus.FieldLogger) *ReservationSweeper {
	return &ReservationSweeper{
		reservations: reservations,
		bookings:     bookings,
		coupons:      coupons,
		ttl:          ttl,
		logger:       logger,
		now:          time.Now,
	}
}

// Run confirms stale reservations whose booking exists and releases the rest.
// An online booking still waiting on its payment is left for a later sweep
// until the reservation is twice the TTL old, since its request may yet
// fail and release the reservation itself.
func (s *ReservationSweeper) Run(ctx context.Context) error {
	now := s.now().UTC()
	stale, err := s.reservations.ListStale(ctx, now.Add(-s.ttl), sweepBatchSize)
	if err != nil {
		return err
	}

	var confirmed, released int
	for _, r := range stale {
		log := s.logger.WithFields(logrus.Fields{"reservation_id": r.ID, "booking_id": r.BookingID})

		b, err := s.bookings.GetByID(ctx, r.BookingID)
		switch {
		case err == nil && awaitingPayment(b) && r.CreatedAt.After(now.Add(-2*s.ttl)):
			log.Debug("booking still attaching payment; reservation deferred")
			continue
		case err == nil:
			err = s.coupons.Confirm(ctx, r)
			if err == nil {
				confirmed++
			}
		case errors.Is(err, apperrors.ErrBookingNotFound):
			err = s.coupons.Release(ctx, r)
			if err == nil {
				released++
			}
		}
		// settled concurrently by the request path
		if errors.Is(err, apperrors.ErrReservationSettled) {
			continue
		}
		if err != nil {
			log.WithError(err).Warn("stale reservation not settled")
		}
	}

	if confirmed+released > 0 {
		s.logger.WithFields(logrus.Fields{"confirmed": confirmed, "released": released}).Info("stale coupon reservations settled")
	}
	return nil
}

func awaitingPayment(b *model.Booking) bool {
	return b.PaymentMethod == model.PaymentOnline && b.PaymentID == ""
}

// OrphanHolds lists and frees calendar holds left by bookings that were
// never stored or were cancelled without releasing their slot
type OrphanHolds interface {
	ListOrphanHolds(ctx context.Context, cutoff time.Time, limit int64) ([]model.SlotHold, error)
	ReleaseSlot(ctx context.Context, workerID string, date time.Time, bookingID string) error
}

// SlotHoldSweeper frees orphaned worker calendar holds
type SlotHoldSweeper struct {
	holds  OrphanHolds
	ttl    time.Duration
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewSlotHoldSweeper(holds OrphanHolds, ttl time.Duration, logger logrus.FieldLogger) *SlotHoldSweeper {
	return &SlotHoldSweeper{holds: holds, ttl: ttl, logger: logger, now: time.Now}
}

func (s *SlotHoldSweeper) Run(ctx context.Context) error {
	orphans, err := s.holds.ListOrphanHolds(ctx, s.now().UTC().Add(-s.ttl), sweepBatchSize)
	if err != nil {
		return err
	}

	var freed int
	for _, h := range orphans {
		if err := s.holds.ReleaseSlot(ctx, h.WorkerID, h.BookingDate, h.BookingID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"worker_id":  h.WorkerID,
				"booking_id": h.BookingID,
			}).Warn("orphan calendar hold not released")
			continue
		}
		freed++
	}
	if freed > 0 {
		s.logger.WithField("released", freed).Info("orphan calendar holds released")
	}
	return nil
}

// RefundRunner pushes pending refunds through the gateway
type RefundRunner interface {
	ProcessRefunds(ctx context.Context) (int, error)
}

// RefundProcessor is the scheduled wrapper around refund processing
type RefundProcessor struct {
	linkage RefundRunner
	logger  logrus.FieldLogger
}

func NewRefundProcessor(linkage RefundRunner, logger logrus.FieldLogger) *RefundProcessor {
	return &RefundProcessor{linkage: linkage, logger: logger}
}

func (p *RefundProcessor) Run(ctx context.Context) error {
	n, err := p.linkage.ProcessRefunds(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		p.logger.WithField("refunded", n).Info("refunds processed")
	}
	return nil
}
