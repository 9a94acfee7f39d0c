package notify

import (
	"context"

	"github.com/travigo/bustracker/pkg/config"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSChannel sends the notification message as a text message through Twilio
type SMSChannel struct {
	From string
	To   string

	messages messageCreator
}

func NewSMSChannel(cfg config.TwilioConfig) *SMSChannel {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &SMSChannel{
		From:     cfg.FromNumber,
		To:       cfg.ToNumber,
		messages: client.Api,
	}
}

func (c *SMSChannel) Name() string {
	return "sms"
}

func (c *SMSChannel) Send(_ context.Context, notification ctdf.Notification) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(c.From)
	params.SetTo(c.To)
	params.SetBody(notification.Message)

	_, err := c.messages.CreateMessage(params)

	return err
}
