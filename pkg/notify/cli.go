package notify

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/config"
	"github.com/travigo/bustracker/pkg/consumer"
	"github.com/travigo/bustracker/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Provides the notification system",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run notify server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "stats-listen",
						Value: ":3333",
						Usage: "listen target for the queue stats server",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadFromEnvironment()
					if err != nil {
						return err
					}
					if err := redis_client.Connect(true); err != nil {
						return err
					}

					dispatcher, err := NewDispatcher(context.Background(), cfg)
					if err != nil {
						return err
					}

					redisConsumer := consumer.RedisConsumer{
						QueueName:       QueueName,
						NumberConsumers: 5,
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        NewNotifyBatchConsumer(dispatcher),
						StatsListen:     c.String("stats-listen"),
					}
					if err := redisConsumer.Setup(); err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					log.Info().Msg("Stopping notify consumers")
					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
		},
	}
}

// NewNotifier returns the notifier used by the web api. Notifications are
// queued when Redis is available and dispatched in process otherwise.
func NewNotifier(ctx context.Context, cfg *config.Config) (Notifier, error) {
	if redis_client.QueueConnection != nil {
		queue, err := redis_client.QueueConnection.OpenQueue(QueueName)
		if err != nil {
			return nil, err
		}

		log.Info().Str("queue", QueueName).Msg("Publishing notifications to queue")
		return &QueuePublisher{Queue: queue}, nil
	}

	return NewDispatcher(ctx, cfg)
}
