package handler

import (
	"homeservice-booking/internal/model"
	"homeservice-booking/pkg/metrics"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the router is built over. Webhook may be nil
// when no gateway webhook is configured.
type Deps struct {
	Bookings      BookingAPI
	Coupons       CouponAPI
	Payments      PaymentAPI
	Notifications NotificationAPI
	Webhook       WebhookResolver
	Tokens        TokenVerifier
	Logger        logrus.FieldLogger
	Debug         bool
}

// NewRouter builds the HTTP API
func NewRouter(d Deps) *gin.Engine {
	if !d.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	resp := NewResponder(d.Logger, d.Debug)

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(d.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if d.Webhook != nil {
		router.POST("/webhooks/payments/omise", omiseWebhookHandler(d.Webhook, d.Payments, resp, d.Logger))
	}

	api := router.Group("/api")
	api.Use(JWTAuth(d.Tokens, resp))
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("", RequireRole(resp, model.RoleCustomer), createBookingHandler(d.Bookings, resp))
			bookings.GET("", listBookingsHandler(d.Bookings, resp))
			bookings.GET("/:id", getBookingHandler(d.Bookings, resp))
			bookings.POST("/:id/handle-request", RequireRole(resp, model.RoleWorker), handleRequestHandler(d.Bookings, resp))
			bookings.POST("/:id/start", RequireRole(resp, model.RoleWorker), startBookingHandler(d.Bookings, resp))
			bookings.PATCH("/:id/status", updateStatusHandler(d.Bookings, resp))
			bookings.DELETE("/:id", cancelBookingHandler(d.Bookings, resp))
		}

		coupons := api.Group("/coupons")
		{
			coupons.POST("", RequireRole(resp, model.RoleAdmin), createCouponHandler(d.Coupons, resp))
			coupons.POST("/validate", RequireRole(resp, model.RoleCustomer), validateCouponHandler(d.Coupons, resp))
			coupons.GET("/:code", RequireRole(resp, model.RoleAdmin), getCouponDetailsHandler(d.Coupons, resp))
		}

		api.POST("/payments/callback", RequireRole(resp, model.RoleAdmin), paymentCallbackHandler(d.Payments, resp))

		notifications := api.Group("/notifications")
		{
			notifications.GET("", listNotificationsHandler(d.Notifications, resp))
			notifications.PATCH("/:id/read", markReadHandler(d.Notifications, resp))
		}
	}

	return router
}
