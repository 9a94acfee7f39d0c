package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/ctdf"
)

var ErrNotificationFailure = errors.New("notification failure")

const backgroundTimeout = 30 * time.Second

type Notifier interface {
	Notify(ctx context.Context, notification ctdf.Notification) error
}

// Background delivers the notification without blocking the caller.
// Delivery failures are logged and otherwise ignored.
func Background(notifier Notifier, notification ctdf.Notification) {
	if notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		if err := notifier.Notify(ctx, notification); err != nil {
			log.Error().Err(err).Str("type", string(notification.Type)).Msg("Failed to send notification")
		}
	}()
}

// Discard drops every notification
type Discard struct{}

func (Discard) Notify(context.Context, ctdf.Notification) error {
	return nil
}
