package handler

import (
	"context"
	"homeservice-booking/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PaymentAPI applies settled payment outcomes
type PaymentAPI interface {
	ReactToPaymentCallback(ctx context.Context, cb model.PaymentCallback) (*model.Payment, error)
}

// WebhookResolver verifies a gateway event by id and extracts its outcome
type WebhookResolver interface {
	ResolveWebhook(ctx context.Context, eventID string) (*model.PaymentCallback, bool, error)
}

// paymentCallbackHandler handles POST /api/payments/callback
func paymentCallbackHandler(svc PaymentAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cb model.PaymentCallback
		if err := c.ShouldBindJSON(&cb); err != nil {
			resp.BadRequest(c, err)
			return
		}

		payment, err := svc.ReactToPaymentCallback(c.Request.Context(), cb)
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "payment updated", gin.H{"payment": payment})
	}
}

type webhookEvent struct {
	ID  string `json:"id" binding:"required"`
	Key string `json:"key"`
}

// omiseWebhookHandler handles POST /webhooks/payments/omise. Only unverifiable
// events are rejected; everything else is acknowledged so the gateway stops retrying.
func omiseWebhookHandler(resolver WebhookResolver, svc PaymentAPI, resp *Responder, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in webhookEvent
		if err := c.ShouldBindJSON(&in); err != nil {
			resp.BadRequest(c, err)
			return
		}
		log := logger.WithFields(logrus.Fields{"event_id": in.ID, "key": in.Key})

		cb, ok, err := resolver.ResolveWebhook(c.Request.Context(), in.ID)
		if err != nil {
			log.WithError(err).Warn("webhook event could not be verified")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unverified event"})
			return
		}
		if !ok {
			c.Status(http.StatusOK)
			return
		}

		if _, err := svc.ReactToPaymentCallback(c.Request.Context(), *cb); err != nil {
			log.WithError(err).WithField("booking_id", cb.BookingID).Error("webhook outcome not applied")
		}
		c.Status(http.StatusOK)
	}
}
