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

// CouponService handles business logic for coupons.
// Redemption is reserve-then-confirm: Reserve consumes one use and records a
// reservation; Confirm settles it once the booking exists and Release gives
// the use back when booking creation fails.
type CouponService struct {
	couponRepo      repository.CouponRepository
	reservationRepo repository.ReservationRepository
	catalog         repository.CatalogRepository
	pricing         *PricingCalculator
	logger          logrus.FieldLogger
	now             func() time.Time
}

// NewCouponService creates a new coupon service
func NewCouponService(
	couponRepo repository.CouponRepository,
	reservationRepo repository.ReservationRepository,
	catalog repository.CatalogRepository,
	pricing *PricingCalculator,
	logger logrus.FieldLogger,
) *CouponService {
	return &CouponService{
		couponRepo:      couponRepo,
		reservationRepo: reservationRepo,
		catalog:         catalog,
		pricing:         pricing,
		logger:          logger,
		now:             time.Now,
	}
}

// CreateCoupon validates and stores a new coupon
func (s *CouponService) CreateCoupon(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	code := NormalizeCouponCode(req.Code)
	if code == "" {
		return nil, apperrors.Validation("coupon code is required")
	}
	if req.Type == model.CouponPercentage && req.Value > 100 {
		return nil, apperrors.Validation("percentage coupon value must be at most 100")
	}
	if req.Type == model.CouponFixed && req.MaxDiscount > 0 {
		return nil, apperrors.Validation("maxDiscount applies to percentage coupons only")
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		return nil, apperrors.Validation("validUntil must be after validFrom")
	}

	now := s.now().UTC()
	coupon := &model.Coupon{
		ID:                   uuid.NewString(),
		Code:                 code,
		Type:                 req.Type,
		Value:                req.Value,
		MaxDiscount:          req.MaxDiscount,
		MinOrderValue:        req.MinOrderValue,
		ValidFrom:            req.ValidFrom.UTC(),
		ValidUntil:           req.ValidUntil.UTC(),
		MaxUsage:             req.MaxUsage,
		ApplicableServices:   req.ApplicableServices,
		ApplicableCategories: req.ApplicableCategories,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.couponRepo.CreateCoupon(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// GetCouponDetails retrieves coupon details including redemption history
func (s *CouponService) GetCouponDetails(ctx context.Context, code string) (*model.CouponDetailsResponse, error) {
	coupon, err := s.couponRepo.GetCouponByCode(ctx, NormalizeCouponCode(code))
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservationRepo.ListByCoupon(ctx, coupon.ID)
	if err != nil {
		return nil, err
	}

	redeemedBy := make([]string, 0, len(reservations))
	for _, r := range reservations {
		redeemedBy = append(redeemedBy, r.BookingID)
	}

	remaining := int64(-1)
	if coupon.MaxUsage > 0 {
		remaining = coupon.MaxUsage - coupon.UsageCount
		if remaining < 0 {
			remaining = 0
		}
	}

	return &model.CouponDetailsResponse{
		Coupon:     coupon,
		Remaining:  remaining,
		RedeemedBy: redeemedBy,
	}, nil
}

// Evaluate looks up code and checks it against subTotal and target
func (s *CouponService) Evaluate(ctx context.Context, code string, subTotal float64, target model.CouponTarget) (*model.Coupon, model.Discount, error) {
	coupon, err := s.couponRepo.GetCouponByCode(ctx, NormalizeCouponCode(code))
	if err != nil {
		return nil, model.Discount{}, err
	}
	discount, err := EvaluateCoupon(coupon, subTotal, target, s.now())
	if err != nil {
		return nil, model.Discount{}, err
	}
	return coupon, discount, nil
}

// Preview prices a worker service with a coupon without redeeming it
func (s *CouponService) Preview(ctx context.Context, req *model.ValidateCouponRequest) (*model.CouponPreview, error) {
	ws, err := s.catalog.GetWorkerService(ctx, req.WorkerServiceID)
	if err != nil {
		return nil, err
	}
	if !ws.IsActive {
		return nil, apperrors.ErrWorkerServiceNotFound
	}

	quote := s.pricing.Quote(ws.CustomPrice)
	coupon, discount, err := s.Evaluate(ctx, req.CouponCode, quote.SubTotal, model.CouponTarget{
		ServiceID:  ws.ServiceID,
		CategoryID: ws.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	return &model.CouponPreview{
		Coupon:         coupon,
		PriceBreakdown: s.pricing.Apply(quote, discount),
	}, nil
}

// Reserve consumes one use of coupon on behalf of bookingID
func (s *CouponService) Reserve(ctx context.Context, coupon *model.Coupon, bookingID, customerID string) (*model.CouponReservation, error) {
	if err := s.couponRepo.IncrementUsage(ctx, coupon.ID); err != nil {
		if errors.Is(err, apperrors.ErrCouponExhausted) {
			metrics.IncCouponRedemption("exhausted")
		}
		return nil, err
	}

	now := s.now().UTC()
	reservation := &model.CouponReservation{
		ID:         uuid.NewString(),
		CouponID:   coupon.ID,
		CouponCode: coupon.Code,
		BookingID:  bookingID,
		CustomerID: customerID,
		Status:     model.ReservationReserved,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reservationRepo.CreateReservation(ctx, reservation); err != nil {
		if decErr := s.couponRepo.DecrementUsage(context.WithoutCancel(ctx), coupon.ID); decErr != nil {
			s.logger.WithError(decErr).WithField("coupon_id", coupon.ID).Error("failed to give back coupon usage")
		}
		return nil, err
	}

	metrics.IncCouponRedemption("reserved")
	return reservation, nil
}

// Confirm settles a reservation once its booking is durable
func (s *CouponService) Confirm(ctx context.Context, reservation *model.CouponReservation) error {
	if err := s.reservationRepo.UpdateStatus(ctx, reservation.ID, model.ReservationReserved, model.ReservationConfirmed); err != nil {
		return err
	}
	reservation.Status = model.ReservationConfirmed
	metrics.IncCouponRedemption("confirmed")
	return nil
}

// Release abandons a reservation and returns its use to the coupon
func (s *CouponService) Release(ctx context.Context, reservation *model.CouponReservation) error {
	if err := s.reservationRepo.UpdateStatus(ctx, reservation.ID, model.ReservationReserved, model.ReservationReleased); err != nil {
		return err
	}
	reservation.Status = model.ReservationReleased
	if err := s.couponRepo.DecrementUsage(ctx, reservation.CouponID); err != nil {
		return err
	}
	metrics.IncCouponRedemption("released")
	return nil
}
