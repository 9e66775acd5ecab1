package service

import (
	"homeservice-booking/internal/model"
	"testing"
)

func TestQuoteWithoutCoupon(t *testing.T) {
	p := NewPricingCalculator(DefaultServiceFeeRate)

	got := p.Quote(1000)
	if got.ServiceFee != 150 || got.SubTotal != 1150 || got.TotalAmount != 1150 {
		t.Fatalf("Quote(1000) = %+v, want fee 150, subTotal 1150, total 1150", got)
	}
}

func TestApplyDiscount(t *testing.T) {
	p := NewPricingCalculator(DefaultServiceFeeRate)

	tests := []struct {
		name      string
		base      float64
		discount  float64
		wantTotal float64
		wantDisc  float64
	}{
		{"partial", 1000, 100, 1050, 100},
		{"zero", 1000, 0, 1150, 0},
		{"exceeds subtotal clamps to zero", 100, 500, 0, 115},
		{"negative treated as zero", 1000, -20, 1150, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Apply(p.Quote(tt.base), model.Discount{DiscountAmount: tt.discount})
			if got.TotalAmount != tt.wantTotal || got.Discount.DiscountAmount != tt.wantDisc {
				t.Fatalf("Apply() = %+v, want total %v discount %v", got, tt.wantTotal, tt.wantDisc)
			}
			if got.TotalAmount != got.SubTotal-got.Discount.DiscountAmount || got.TotalAmount < 0 {
				t.Fatalf("total must equal subTotal - discount and be non-negative: %+v", got)
			}
		})
	}
}

func TestApplyTotalIsExactDifference(t *testing.T) {
	p := NewPricingCalculator(DefaultServiceFeeRate)

	for cents := 1; cents < 20000; cents++ {
		quote := p.Quote(float64(cents) / 100)
		for _, d := range []float64{0.01, 0.07, 0.33, 1.1, quote.SubTotal / 3} {
			got := p.Apply(quote, model.Discount{DiscountAmount: d})
			if got.TotalAmount != got.SubTotal-got.Discount.DiscountAmount {
				t.Fatalf("base %.2f discount %v: total %v != %v - %v",
					quote.BaseAmount, d, got.TotalAmount, got.SubTotal, got.Discount.DiscountAmount)
			}
			if got.TotalAmount < 0 {
				t.Fatalf("base %.2f discount %v: negative total %v", quote.BaseAmount, d, got.TotalAmount)
			}
		}
	}
}

func TestNewPricingCalculatorDefaultsRate(t *testing.T) {
	if got := NewPricingCalculator(0).Quote(200).ServiceFee; got != 30 {
		t.Fatalf("ServiceFee = %v, want 30", got)
	}
}
