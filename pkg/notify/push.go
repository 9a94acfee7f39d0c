package notify

import (
	"context"
	"encoding/base64"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/config"
	"github.com/travigo/bustracker/pkg/ctdf"
	"google.golang.org/api/option"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushChannel publishes the notification to a Firebase Cloud Messaging topic
type PushChannel struct {
	Topic string

	messaging messageSender
}

func NewPushChannel(ctx context.Context, cfg config.FirebaseConfig) (*PushChannel, error) {
	decodedKey, err := base64.StdEncoding.DecodeString(cfg.ServiceAccount)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithCredentialsJSON(decodedKey)}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	fcmClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}

	return &PushChannel{
		Topic:     cfg.Topic,
		messaging: fcmClient,
	}, nil
}

func (c *PushChannel) Name() string {
	return "push"
}

func (c *PushChannel) Send(ctx context.Context, notification ctdf.Notification) error {
	data := map[string]string{
		"type": string(notification.Type),
	}
	if notification.BusID != "" {
		data["bus_number"] = notification.BusID
	}

	_, err := c.messaging.Send(ctx, &messaging.Message{
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Message,
		},
		Data:  data,
		Topic: c.Topic,
	})
	if err != nil {
		return err
	}

	log.Info().Str("topic", c.Topic).Msg("Sent Push Notification")

	return nil
}
