package handler

import (
	"context"
	"homeservice-booking/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CouponAPI is coupon administration and preview
type CouponAPI interface {
	CreateCoupon(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	GetCouponDetails(ctx context.Context, code string) (*model.CouponDetailsResponse, error)
	Preview(ctx context.Context, req *model.ValidateCouponRequest) (*model.CouponPreview, error)
}

// createCouponHandler handles POST /api/coupons
func createCouponHandler(svc CouponAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			resp.BadRequest(c, err)
			return
		}

		coupon, err := svc.CreateCoupon(c.Request.Context(), &req)
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusCreated, "coupon created", gin.H{"coupon": coupon})
	}
}

// getCouponDetailsHandler handles GET /api/coupons/:code
func getCouponDetailsHandler(svc CouponAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		details, err := svc.GetCouponDetails(c.Request.Context(), c.Param("code"))
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "coupon retrieved", gin.H{"coupon": details})
	}
}

// validateCouponHandler handles POST /api/coupons/validate
func validateCouponHandler(svc CouponAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ValidateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			resp.BadRequest(c, err)
			return
		}

		preview, err := svc.Preview(c.Request.Context(), &req)
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "coupon is valid", gin.H{
			"discount":       preview.PriceBreakdown.Discount,
			"priceBreakdown": preview.PriceBreakdown,
		})
	}
}
