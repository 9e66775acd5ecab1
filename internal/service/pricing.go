package service

import (
	"homeservice-booking/internal/model"
	"math"
)

// DefaultServiceFeeRate is the platform fee charged on top of the worker's price
const DefaultServiceFeeRate = 0.15

// PricingCalculator computes booking prices. It has no side effects.
type PricingCalculator struct {
	feeRate float64
}

// NewPricingCalculator creates a calculator for feeRate; non-positive rates use the default
func NewPricingCalculator(feeRate float64) *PricingCalculator {
	if feeRate <= 0 {
		feeRate = DefaultServiceFeeRate
	}
	return &PricingCalculator{feeRate: feeRate}
}

// Quote prices baseAmount with no discount
func (p *PricingCalculator) Quote(baseAmount float64) model.PriceBreakdown {
	if baseAmount < 0 {
		baseAmount = 0
	}
	fee := roundMoney(baseAmount * p.feeRate)
	subTotal := roundMoney(baseAmount + fee)
	return model.PriceBreakdown{
		BaseAmount:  baseAmount,
		ServiceFee:  fee,
		SubTotal:    subTotal,
		TotalAmount: subTotal,
	}
}

// Apply subtracts discount from a quote. The discount is clamped to the
// subtotal so the total never goes negative.
func (p *PricingCalculator) Apply(quote model.PriceBreakdown, discount model.Discount) model.PriceBreakdown {
	amount := roundMoney(discount.DiscountAmount)
	if amount < 0 {
		amount = 0
	}
	if amount > quote.SubTotal {
		amount = quote.SubTotal
	}
	discount.DiscountAmount = amount
	quote.Discount = discount
	// both operands are already rounded; rounding the difference again can
	// drift from subTotal - discount by one ulp
	quote.TotalAmount = quote.SubTotal - amount
	return quote
}

// roundMoney rounds to two decimal places
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
