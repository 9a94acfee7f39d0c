package api

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/app"
	"github.com/travigo/bustracker/pkg/config"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/database"
	"github.com/travigo/bustracker/pkg/elastic_client"
	"github.com/travigo/bustracker/pkg/geolocation"
	"github.com/travigo/bustracker/pkg/history"
	"github.com/travigo/bustracker/pkg/notify"
	"github.com/travigo/bustracker/pkg/occupancy"
	"github.com/travigo/bustracker/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the bus tracker web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":5000",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "push-listen",
						Value: ":5001",
						Usage: "listen target for the Socket.IO push server, disabled when empty",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadFromEnvironment()
					if err != nil {
						return err
					}

					routes, err := ctdf.LoadRouteTable(cfg.RoutesFile)
					if err != nil {
						return err
					}
					log.Info().Int("routes", routes.Len()).Msg("Loaded route table")

					if err := database.Connect(false); err != nil {
						return err
					}
					if err := redis_client.Connect(false); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}

					notifier, err := notify.NewNotifier(c.Context, cfg)
					if err != nil {
						return err
					}

					resolver, err := geolocation.NewResolver(cfg)
					if err != nil {
						return err
					}

					application, err := app.New(cfg, routes, app.Options{
						Detector: occupancy.NewDetector(cfg),
						Resolver: resolver,
						Notifier: notifier,
						Recorder: history.NewRecorder(),
					})
					if err != nil {
						return err
					}

					if database.Connected() {
						if err := application.ReplaySearchHistory(c.Context, history.NewMongoRecorder()); err != nil {
							log.Error().Err(err).Msg("Failed to replay search history")
						}
					}

					if c.String("push-listen") != "" {
						pushServer := NewPushServer(application.Tracker)
						defer pushServer.Close()

						go func() {
							if err := pushServer.Listen(c.String("push-listen")); err != nil {
								log.Error().Err(err).Msg("Push server failed")
							}
						}()
					}

					webApp := NewServer(application)

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					go func() {
						<-signals
						log.Info().Msg("Shutting down web api")
						webApp.Shutdown()
					}()

					log.Info().
						Str("listen", c.String("listen")).
						Int("routeHistoryCapacity", application.Tracker.Capacity()).
						Msg("Starting web api")
					if err := webApp.Listen(c.String("listen")); err != nil {
						return err
					}

					elastic_client.WaitUntilQueueEmpty()

					return database.Disconnect(context.Background())
				},
			},
		},
	}
}
