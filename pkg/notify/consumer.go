package notify

import (
	"context"
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/ctdf"
)

type NotifyBatchConsumer struct {
	notifier Notifier
}

func NewNotifyBatchConsumer(notifier Notifier) *NotifyBatchConsumer {
	return &NotifyBatchConsumer{notifier: notifier}
}

func (c *NotifyBatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var notification ctdf.Notification
		if err := json.Unmarshal([]byte(payload), &notification); err != nil {
			log.Error().Err(err).Msg("Failed to decode notification")
			continue
		}

		if err := c.notifier.Notify(context.Background(), notification); err != nil {
			log.Error().Err(err).Str("type", string(notification.Type)).Msg("Failed to deliver notification")
		}
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack notification")
		}
	}
}
