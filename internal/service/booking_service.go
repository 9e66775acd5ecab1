package service

import (
	"context"
	"homeservice-booking/internal/model"
	"homeservice-booking/internal/repository"
	apperrors "homeservice-booking/pkg/errors"
	"homeservice-booking/pkg/metrics"
	"homeservice-booking/pkg/obs"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BookingService owns the booking lifecycle
type BookingService struct {
	bookings repository.BookingRepository
	catalog  repository.CatalogRepository
	coupons  *CouponService
	payments *PaymentLinkage
	pricing  *PricingCalculator
	events   EventPublisher
	logger   logrus.FieldLogger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookings repository.BookingRepository,
	catalog repository.CatalogRepository,
	coupons *CouponService,
	payments *PaymentLinkage,
	pricing *PricingCalculator,
	events EventPublisher,
	logger logrus.FieldLogger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		catalog:  catalog,
		coupons:  coupons,
		payments: payments,
		pricing:  pricing,
		events:   events,
		logger:   logger,
		tracer:   obs.Tracer("homeservice-booking/service"),
		now:      time.Now,
	}
}

// CreateBooking validates a request, prices it, redeems the coupon and
// stores the booking. Online bookings also get a pending payment.
// Any failure after the coupon is reserved releases the reservation.
func (s *BookingService) CreateBooking(ctx context.Context, p model.Principal, req *model.CreateBookingRequest) (*model.CreateBookingResult, error) {
	ctx, span := s.tracer.Start(ctx, "booking.create")
	defer span.End()

	if p.Role != model.RoleCustomer {
		return nil, apperrors.ErrForbidden
	}

	slot, err := model.ParseTimeSlot(req.TimeSlot)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	date, err := model.ParseBookingDate(req.BookingDate)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		return nil, apperrors.Validation("booking date cannot be in the past")
	}
	if !req.PaymentMethod.Valid() {
		return nil, apperrors.Validation("payment method must be online or cash")
	}

	ws, err := s.catalog.GetWorkerService(ctx, req.WorkerServiceID)
	if err != nil {
		return nil, err
	}
	if ws.WorkerID != req.WorkerID || !ws.IsActive {
		return nil, apperrors.ErrWorkerServiceNotFound
	}
	worker, err := s.catalog.GetUser(ctx, req.WorkerID)
	if err != nil {
		return nil, apperrors.ErrWorkerNotFound
	}
	if worker.Role != model.RoleWorker || !worker.IsActive {
		return nil, apperrors.ErrWorkerNotFound
	}
	addr, err := s.catalog.GetAddress(ctx, req.AddressID)
	if err != nil {
		return nil, err
	}
	if addr.UserID != p.ID {
		return nil, apperrors.ErrAddressNotFound
	}

	busy, err := s.bookings.HasOverlap(ctx, req.WorkerID, date, slot)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, apperrors.ErrSlotUnavailable
	}

	price := s.pricing.Quote(ws.CustomPrice)
	bookingID := uuid.NewString()

	var coupon *model.Coupon
	if code := NormalizeCouponCode(req.CouponCode); code != "" {
		var discount model.Discount
		coupon, discount, err = s.coupons.Evaluate(ctx, code, price.SubTotal, model.CouponTarget{
			ServiceID:  ws.ServiceID,
			CategoryID: ws.CategoryID,
		})
		if err != nil {
			return nil, err
		}
		price = s.pricing.Apply(price, discount)
	}
	if req.PaymentMethod == model.PaymentOnline && price.TotalAmount <= 0 {
		return nil, apperrors.Validation("online payment requires a positive total; choose cash")
	}

	now := s.now().UTC()
	booking := &model.Booking{
		ID:                bookingID,
		CustomerID:        p.ID,
		WorkerID:          req.WorkerID,
		WorkerServiceID:   ws.ID,
		AddressID:         addr.ID,
		BookingDate:       date,
		ScheduledTimeSlot: slot,
		Status:            InitialStatus(req.PaymentMethod),
		PaymentMethod:     req.PaymentMethod,
		CancelledBy:       model.CancelledByNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	booking.ApplyPricing(price)
	span.SetAttributes(attribute.String("booking.id", booking.ID), attribute.String("booking.payment_method", string(booking.PaymentMethod)))

	// the overlap check above is advisory; the calendar hold is what
	// serialises concurrent requests for the same worker and day
	if err := s.bookings.HoldSlot(ctx, model.SlotHold{
		WorkerID:    booking.WorkerID,
		BookingDate: booking.BookingDate,
		BookingID:   booking.ID,
		Start:       slot.Start,
		End:         slot.End,
		HeldAt:      now,
	}); err != nil {
		return nil, err
	}

	var reservation *model.CouponReservation
	if coupon != nil {
		reservation, err = s.coupons.Reserve(ctx, coupon, bookingID, p.ID)
		if err != nil {
			s.releaseSlot(ctx, booking)
			return nil, err
		}
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		s.releaseReservation(ctx, reservation)
		s.releaseSlot(ctx, booking)
		return nil, err
	}

	var payment *model.Payment
	if booking.PaymentMethod == model.PaymentOnline {
		payment, err = s.payments.AttachPayment(ctx, booking)
		if err != nil {
			s.discardBooking(ctx, booking, reservation)
			return nil, err
		}
	}

	if reservation != nil {
		// an unconfirmed reservation is settled later by the sweeper
		if err := s.coupons.Confirm(ctx, reservation); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"booking_id":     booking.ID,
				"reservation_id": reservation.ID,
			}).Warn("coupon reservation left unconfirmed")
		}
	}

	metrics.IncBookingCreated(string(booking.PaymentMethod), string(booking.Status))
	s.logger.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"customer_id":    booking.CustomerID,
		"worker_id":      booking.WorkerID,
		"status":         booking.Status,
		"payment_method": booking.PaymentMethod,
		"total_amount":   booking.TotalAmount,
	}).Info("booking created")

	s.events.Publish(ctx, model.Event{
		Type:       model.NotifyBookingCreated,
		Booking:    *booking,
		Recipients: []model.Recipient{model.CustomerOf(booking), model.WorkerOf(booking)},
		OccurredAt: now,
	})

	return &model.CreateBookingResult{
		Booking:        booking,
		Payment:        payment,
		PriceBreakdown: price,
	}, nil
}

// GetBooking returns a booking visible to p
func (s *BookingService) GetBooking(ctx context.Context, p model.Principal, id string) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != model.RoleAdmin && !booking.IsParty(p.ID) {
		return nil, apperrors.ErrForbidden
	}
	return booking, nil
}

// ListBookings returns bookings visible to p
func (s *BookingService) ListBookings(ctx context.Context, p model.Principal, filter model.BookingFilter) ([]*model.Booking, error) {
	switch p.Role {
	case model.RoleCustomer:
		filter.CustomerID = p.ID
	case model.RoleWorker:
		filter.WorkerID = p.ID
	case model.RoleAdmin:
	default:
		return nil, apperrors.ErrForbidden
	}
	return s.bookings.List(ctx, filter)
}

// HandleRequest applies a worker's accept or reject to a pending booking
func (s *BookingService) HandleRequest(ctx context.Context, p model.Principal, id string, req *model.HandleRequestRequest) (*model.Booking, error) {
	switch req.Action {
	case string(ActionAccept):
		return s.transition(ctx, p, id, ActionAccept, "")
	case string(ActionReject):
		return s.transition(ctx, p, id, ActionReject, strings.TrimSpace(req.RejectionReason))
	}
	return nil, apperrors.Validation("action must be accept or reject")
}

// StartBooking moves a booking into progress
func (s *BookingService) StartBooking(ctx context.Context, p model.Principal, id string) (*model.Booking, error) {
	return s.transition(ctx, p, id, ActionStart, "")
}

// UpdateStatus moves a booking to completed or cancelled
func (s *BookingService) UpdateStatus(ctx context.Context, p model.Principal, id string, req *model.UpdateStatusRequest) (*model.Booking, error) {
	switch req.Status {
	case model.BookingCompleted:
		return s.transition(ctx, p, id, ActionComplete, "")
	case model.BookingCancelled:
		return s.transition(ctx, p, id, ActionCancel, strings.TrimSpace(req.Reason))
	}
	return nil, apperrors.Validation("status must be completed or cancelled")
}

// CancelBooking cancels a booking on behalf of any party
func (s *BookingService) CancelBooking(ctx context.Context, p model.Principal, id, reason string) (*model.Booking, error) {
	return s.transition(ctx, p, id, ActionCancel, strings.TrimSpace(reason))
}

func (s *BookingService) transition(ctx context.Context, p model.Principal, id string, action Action, reason string) (*model.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking."+string(action))
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", id), attribute.String("actor.role", string(p.Role)))

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rule, err := resolveTransition(action, p, booking)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	change := model.StatusChange{From: booking.Status, To: rule.to, UpdatedAt: now}
	switch action {
	case ActionAccept:
		change.WorkerResponseTime = &now
	case ActionReject:
		change.WorkerResponseTime = &now
		change.CancelledBy = model.CancelledByWorker
		change.CancellationReason = reason
	case ActionStart:
		change.StartedAt = &now
	case ActionComplete:
		change.CompletedAt = &now
	case ActionCancel:
		change.CancelledBy = cancelledBy(p.Role)
		change.CancellationReason = reason
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, change)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingTransition(string(action), string(updated.Status))

	log := s.logger.WithFields(logrus.Fields{
		"booking_id": updated.ID,
		"action":     action,
		"actor_id":   p.ID,
		"actor_role": p.Role,
		"from":       change.From,
		"to":         updated.Status,
	})
	log.Info("booking status changed")

	if updated.Status == model.BookingCancelled {
		s.releaseSlot(ctx, updated)
		if err := s.payments.ReactToCancellation(ctx, updated); err != nil {
			log.WithError(err).Error("failed to flag payment for refund")
		}
	}

	s.events.Publish(ctx, model.Event{
		Type:       rule.event,
		Booking:    *updated,
		Recipients: rule.recipients(updated),
		Reason:     reason,
		OccurredAt: now,
	})
	return updated, nil
}

// releaseReservation is the compensation for a booking that was never stored
func (s *BookingService) releaseReservation(ctx context.Context, reservation *model.CouponReservation) {
	if reservation == nil {
		return
	}
	if err := s.coupons.Release(context.WithoutCancel(ctx), reservation); err != nil {
		s.logger.WithError(err).WithField("reservation_id", reservation.ID).Error("failed to release coupon reservation")
	}
}

// discardBooking undoes a stored booking whose payment could not be attached
func (s *BookingService) discardBooking(ctx context.Context, booking *model.Booking, reservation *model.CouponReservation) {
	if err := s.bookings.Delete(context.WithoutCancel(ctx), booking.ID); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("failed to remove booking without payment")
	}
	s.releaseReservation(ctx, reservation)
	s.releaseSlot(ctx, booking)
}

// releaseSlot frees the booking's calendar interval. A failure leaves an
// orphan hold for the slot-hold sweeper.
func (s *BookingService) releaseSlot(ctx context.Context, booking *model.Booking) {
	if err := s.bookings.ReleaseSlot(context.WithoutCancel(ctx), booking.WorkerID, booking.BookingDate, booking.ID); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("calendar slot left held")
	}
}
