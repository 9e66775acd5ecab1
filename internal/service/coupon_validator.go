package service

import (
	"homeservice-booking/internal/model"
	apperrors "homeservice-booking/pkg/errors"
	"slices"
	"strings"
	"time"
)

// NormalizeCouponCode trims and upper-cases a coupon code
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EvaluateCoupon checks coupon eligibility at now and computes the discount
// for subTotal. It does not consume usage.
func EvaluateCoupon(c *model.Coupon, subTotal float64, target model.CouponTarget, now time.Time) (model.Discount, error) {
	if c == nil || !c.IsActive || now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return model.Discount{}, apperrors.ErrCouponNotFound
	}
	if c.MaxUsage > 0 && c.UsageCount >= c.MaxUsage {
		return model.Discount{}, apperrors.ErrCouponExhausted
	}
	if subTotal < c.MinOrderValue {
		return model.Discount{}, apperrors.ErrCouponMinOrderNotMet
	}
	if !couponApplies(c, target) {
		return model.Discount{}, apperrors.ErrCouponNotApplicable
	}

	discount := model.Discount{CouponCode: c.Code}
	switch c.Type {
	case model.CouponPercentage:
		discount.Percentage = c.Value
		discount.DiscountAmount = subTotal * c.Value / 100
		if c.MaxDiscount > 0 && discount.DiscountAmount > c.MaxDiscount {
			discount.DiscountAmount = c.MaxDiscount
		}
	case model.CouponFixed:
		discount.DiscountAmount = c.Value
	default:
		return model.Discount{}, apperrors.ErrCouponNotApplicable
	}

	discount.DiscountAmount = roundMoney(discount.DiscountAmount)
	if discount.DiscountAmount > subTotal {
		discount.DiscountAmount = subTotal
	}
	return discount, nil
}

// couponApplies is true when no allow-list is set or the target is listed in one
func couponApplies(c *model.Coupon, target model.CouponTarget) bool {
	if len(c.ApplicableServices) == 0 && len(c.ApplicableCategories) == 0 {
		return true
	}
	return listed(c.ApplicableServices, target.ServiceID) || listed(c.ApplicableCategories, target.CategoryID)
}

func listed(list []string, id string) bool {
	return id != "" && slices.Contains(list, id)
}
