package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/config"
	"github.com/travigo/bustracker/pkg/ctdf"
)

// Channel is a single delivery mechanism such as SMS or push
type Channel interface {
	Name() string
	Send(ctx context.Context, notification ctdf.Notification) error
}

// Dispatcher delivers notifications to every configured channel
type Dispatcher struct {
	Channels []Channel
	Filter   *Filter
}

func (d *Dispatcher) Notify(ctx context.Context, notification ctdf.Notification) error {
	allowed, err := d.Filter.Allows(notification)
	if err != nil {
		return fmt.Errorf("%w: evaluate filter: %w", ErrNotificationFailure, err)
	}
	if !allowed {
		log.Debug().Str("type", string(notification.Type)).Msg("Notification skipped by filter")
		return nil
	}

	if len(d.Channels) == 0 {
		log.Info().Str("type", string(notification.Type)).Str("message", notification.Message).Msg("Notification")
		return nil
	}

	var errs []error
	for _, channel := range d.Channels {
		if err := channel.Send(ctx, notification); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", channel.Name(), err))
			continue
		}

		log.Debug().Str("channel", channel.Name()).Str("type", string(notification.Type)).Msg("Sent notification")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrNotificationFailure, errors.Join(errs...))
	}

	return nil
}

// NewDispatcher builds a dispatcher for every channel enabled in the configuration
func NewDispatcher(ctx context.Context, cfg *config.Config) (*Dispatcher, error) {
	filter, err := NewFilter(cfg.NotifyFilter)
	if err != nil {
		return nil, err
	}

	dispatcher := &Dispatcher{Filter: filter}

	if cfg.Twilio.Enabled() {
		dispatcher.Channels = append(dispatcher.Channels, NewSMSChannel(cfg.Twilio))
	}

	if cfg.Firebase.Enabled() {
		pushChannel, err := NewPushChannel(ctx, cfg.Firebase)
		if err != nil {
			return nil, fmt.Errorf("setup push channel: %w", err)
		}
		dispatcher.Channels = append(dispatcher.Channels, pushChannel)
	}

	if len(dispatcher.Channels) == 0 {
		log.Info().Msg("No notification channels configured, notifications will only be logged")
	}

	return dispatcher, nil
}
