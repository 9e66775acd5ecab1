package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"homeservice-booking/internal/model"
	"homeservice-booking/internal/service"
	"math"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// chargeSourceType is the Omise payment source opened for every order
const chargeSourceType = "promptpay"

// OmiseGateway opens PromptPay charges, issues refunds and verifies webhook events
type OmiseGateway struct {
	client *omise.Client
}

// NewOmiseGateway creates a gateway for the given key pair
func NewOmiseGateway(publicKey, secretKey string) (*OmiseGateway, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, err
	}
	return &OmiseGateway{client: c}, nil
}

// CreateOrder creates a source and a charge against it; the charge id is the order ref
func (g *OmiseGateway) CreateOrder(ctx context.Context, req service.OrderRequest) (*service.Order, error) {
	amount := toMinorUnits(req.Amount)
	if amount <= 0 {
		return nil, fmt.Errorf("omise: amount must be positive")
	}

	src := &omise.Source{}
	if err := g.call(ctx, func() error {
		return g.client.Do(src, &operations.CreateSource{
			Type:     chargeSourceType,
			Amount:   amount,
			Currency: req.Currency,
		})
	}); err != nil {
		return nil, fmt.Errorf("omise create source: %w", err)
	}

	ch := &omise.Charge{}
	if err := g.call(ctx, func() error {
		return g.client.Do(ch, &operations.CreateCharge{
			Amount:   amount,
			Currency: req.Currency,
			Source:   src.ID,
			Metadata: map[string]interface{}{
				"booking_id":  req.BookingID,
				"customer_id": req.CustomerID,
			},
		})
	}); err != nil {
		return nil, fmt.Errorf("omise create charge: %w", err)
	}
	return &service.Order{Ref: ch.ID}, nil
}

// Refund refunds a charge in full or in part
func (g *OmiseGateway) Refund(ctx context.Context, req service.RefundRequest) (*service.Refund, error) {
	r := &omise.Refund{}
	if err := g.call(ctx, func() error {
		return g.client.Do(r, &operations.CreateRefund{
			ChargeID: req.PaymentRef,
			Amount:   toMinorUnits(req.Amount),
			Metadata: map[string]interface{}{"reason": req.Reason},
		})
	}); err != nil {
		return nil, fmt.Errorf("omise create refund: %w", err)
	}
	return &service.Refund{Ref: r.ID}, nil
}

// ResolveWebhook fetches eventID from Omise so the webhook body is never trusted
// directly. ok is false for events that carry no payment outcome.
func (g *OmiseGateway) ResolveWebhook(ctx context.Context, eventID string) (*model.PaymentCallback, bool, error) {
	ev := &omise.Event{}
	if err := g.call(ctx, func() error {
		return g.client.Do(ev, &operations.RetrieveEvent{EventID: eventID})
	}); err != nil {
		return nil, false, fmt.Errorf("omise retrieve event: %w", err)
	}
	if ev.Key != "charge.complete" {
		return nil, false, nil
	}

	// ev.Data is decoded generically; round-trip it into a Charge
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, false, err
	}
	var ch omise.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, false, err
	}

	cb, ok := callbackFromCharge(&ch)
	return cb, ok, nil
}

func callbackFromCharge(ch *omise.Charge) (*model.PaymentCallback, bool) {
	bookingID, _ := ch.Metadata["booking_id"].(string)
	if bookingID == "" {
		return nil, false
	}

	cb := &model.PaymentCallback{BookingID: bookingID, TransactionID: ch.ID}
	if string(ch.Status) == "successful" {
		cb.Status = model.PaymentCompleted
		return cb, true
	}

	cb.Status = model.PaymentFailed
	if ch.FailureCode != nil {
		cb.Reason = *ch.FailureCode
	}
	if ch.FailureMessage != nil && cb.Reason == "" {
		cb.Reason = *ch.FailureMessage
	}
	return cb, true
}

// call runs a blocking client request and gives up when ctx is done. The
// abandoned request finishes in the background and its result is dropped.
func (g *OmiseGateway) call(ctx context.Context, do func() error) error {
	done := make(chan error, 1)
	go func() { done <- do() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// toMinorUnits converts a major-unit amount to satang/cents
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
