package gateway

import (
	"context"
	"homeservice-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ManualGateway stands in for a provider when payments are settled offline.
// Outcomes arrive through the admin payment callback.
type ManualGateway struct {
	logger logrus.FieldLogger
}

func NewManualGateway(logger logrus.FieldLogger) *ManualGateway {
	return &ManualGateway{logger: logger}
}

func (g *ManualGateway) CreateOrder(_ context.Context, req service.OrderRequest) (*service.Order, error) {
	ref := "manual_" + uuid.NewString()
	g.logger.WithFields(logrus.Fields{
		"booking_id": req.BookingID,
		"amount":     req.Amount,
		"order_ref":  ref,
	}).Info("manual payment order opened")
	return &service.Order{Ref: ref}, nil
}

func (g *ManualGateway) Refund(_ context.Context, req service.RefundRequest) (*service.Refund, error) {
	ref := "manual_refund_" + uuid.NewString()
	g.logger.WithFields(logrus.Fields{
		"payment_ref": req.PaymentRef,
		"amount":      req.Amount,
		"refund_ref":  ref,
	}).Info("manual refund recorded")
	return &service.Refund{Ref: ref}, nil
}
