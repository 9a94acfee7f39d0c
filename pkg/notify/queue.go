package notify

import (
	"context"
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/travigo/bustracker/pkg/ctdf"
)

const QueueName = "notify-queue"

// QueuePublisher hands notifications to the notify queue for delivery by the
// notify consumers
type QueuePublisher struct {
	Queue rmq.Queue
}

func (p *QueuePublisher) Notify(_ context.Context, notification ctdf.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	return p.Queue.PublishBytes(payload)
}
