package service

import (
	"context"
	"errors"
	"fmt"
	"homeservice-booking/internal/model"
	apperrors "homeservice-booking/pkg/errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func cappedCoupon(max int64) *model.Coupon {
	c := welcome25()
	c.ID = "coupon-capped"
	c.Code = "FLASH"
	c.MaxUsage = max
	return c
}

func TestReserveFailsPastMaxUsage(t *testing.T) {
	f := newFixture(cappedCoupon(2))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		coupon, _, err := f.couponSvc.Evaluate(ctx, "flash", 1000, model.CouponTarget{})
		if i <= 2 {
			if err != nil {
				t.Fatalf("attempt %d Evaluate() error = %v", i, err)
			}
			if _, err := f.couponSvc.Reserve(ctx, coupon, fmt.Sprintf("b-%d", i), customer.ID); err != nil {
				t.Fatalf("attempt %d Reserve() error = %v", i, err)
			}
			continue
		}
		if !errors.Is(err, apperrors.ErrCouponExhausted) {
			t.Fatalf("attempt %d error = %v, want ErrCouponExhausted", i, err)
		}
		if apperrors.KindOf(err) != apperrors.KindCoupon {
			t.Fatalf("exhaustion must be a coupon error")
		}
	}
}

// TestReserveFlashSale races 50 reservations against a coupon capped at 5.
func TestReserveFlashSale(t *testing.T) {
	coupon := cappedCoupon(5)
	f := newFixture(coupon)
	ctx := context.Background()

	var (
		successCount   int64
		exhaustedCount int64
		otherErrors    int64
		wg             sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.couponSvc.Reserve(ctx, coupon, fmt.Sprintf("booking-%d", n), customer.ID)
			switch {
			case err == nil:
				atomic.AddInt64(&successCount, 1)
			case errors.Is(err, apperrors.ErrCouponExhausted):
				atomic.AddInt64(&exhaustedCount, 1)
			default:
				atomic.AddInt64(&otherErrors, 1)
			}
		}(i)
	}
	wg.Wait()

	if successCount != 5 || exhaustedCount != 45 || otherErrors != 0 {
		t.Fatalf("success=%d exhausted=%d other=%d, want 5/45/0", successCount, exhaustedCount, otherErrors)
	}
	if got := f.coupons.usage(coupon.ID); got != 5 {
		t.Fatalf("usage = %d, want 5", got)
	}
}

func TestReserveGivesBackUsageWhenReservationFails(t *testing.T) {
	coupon := cappedCoupon(1)
	f := newFixture(coupon)
	f.reservations.createErr = errors.New("write conflict")

	if _, err := f.couponSvc.Reserve(context.Background(), coupon, "b-1", customer.ID); err == nil {
		t.Fatalf("expected reservation error")
	}
	if got := f.coupons.usage(coupon.ID); got != 0 {
		t.Fatalf("usage = %d, want 0 after failed reservation", got)
	}
}

func TestReleaseAndConfirm(t *testing.T) {
	coupon := cappedCoupon(1)
	f := newFixture(coupon)
	ctx := context.Background()

	res, err := f.couponSvc.Reserve(ctx, coupon, "b-1", customer.ID)
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if err := f.couponSvc.Release(ctx, res); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if got := f.coupons.usage(coupon.ID); got != 0 {
		t.Fatalf("usage after release = %d, want 0", got)
	}

	// released use is available again
	res, err = f.couponSvc.Reserve(ctx, coupon, "b-2", customer.ID)
	if err != nil {
		t.Fatalf("Reserve() after release error = %v", err)
	}
	if err := f.couponSvc.Confirm(ctx, res); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if err := f.couponSvc.Release(ctx, res); !errors.Is(err, apperrors.ErrReservationSettled) {
		t.Fatalf("Release() of confirmed reservation error = %v, want ErrReservationSettled", err)
	}
	if got := f.coupons.usage(coupon.ID); got != 1 {
		t.Fatalf("usage = %d, want 1", got)
	}

	details, err := f.couponSvc.GetCouponDetails(ctx, "flash")
	if err != nil {
		t.Fatalf("GetCouponDetails() error = %v", err)
	}
	if details.Remaining != 0 || len(details.RedeemedBy) != 1 || details.RedeemedBy[0] != "b-2" {
		t.Fatalf("details = %+v", details)
	}
}

func TestCreateCoupon(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := &model.CreateCouponRequest{
		Code:       " spring10 ",
		Type:       model.CouponPercentage,
		Value:      10,
		ValidFrom:  from,
		ValidUntil: from.AddDate(0, 3, 0),
	}
	coupon, err := f.couponSvc.CreateCoupon(ctx, valid)
	if err != nil {
		t.Fatalf("CreateCoupon() error = %v", err)
	}
	if coupon.Code != "SPRING10" || !coupon.IsActive || coupon.UsageCount != 0 {
		t.Fatalf("coupon = %+v", coupon)
	}
	if _, err := f.couponSvc.CreateCoupon(ctx, valid); !errors.Is(err, apperrors.ErrCouponAlreadyExists) {
		t.Fatalf("duplicate CreateCoupon() error = %v", err)
	}

	bad := []*model.CreateCouponRequest{
		{Code: "BIG", Type: model.CouponPercentage, Value: 120, ValidFrom: from, ValidUntil: from.AddDate(0, 1, 0)},
		{Code: "BACKWARDS", Type: model.CouponFixed, Value: 50, ValidFrom: from, ValidUntil: from},
		{Code: "CAPPEDFIXED", Type: model.CouponFixed, Value: 50, MaxDiscount: 10, ValidFrom: from, ValidUntil: from.AddDate(0, 1, 0)},
	}
	for _, req := range bad {
		if _, err := f.couponSvc.CreateCoupon(ctx, req); apperrors.KindOf(err) != apperrors.KindValidation {
			t.Errorf("CreateCoupon(%s) error = %v, want validation error", req.Code, err)
		}
	}
}

func TestPreview(t *testing.T) {
	f := newFixture(welcome25())

	preview, err := f.couponSvc.Preview(context.Background(), &model.ValidateCouponRequest{CouponCode: "welcome25", WorkerServiceID: "ws-2"})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	pb := preview.PriceBreakdown
	if pb.SubTotal != 2300 || pb.Discount.DiscountAmount != 500 || pb.TotalAmount != 1800 {
		t.Fatalf("price = %+v", pb)
	}
	if got := f.coupons.usage("coupon-welcome"); got != 0 {
		t.Fatalf("preview must not consume usage, got %d", got)
	}
}
