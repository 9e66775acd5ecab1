package notifier

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender sends a text message to a phone number
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioSender sends SMS through the Twilio messages API
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a sender for the given account
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

// Send ignores ctx; the Twilio client has no context support
func (s *TwilioSender) Send(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	if resp.Sid == nil {
		return fmt.Errorf("twilio create message: no sid returned")
	}
	return nil
}
