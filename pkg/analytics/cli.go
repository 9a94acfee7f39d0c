package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/kr/pretty"
	"github.com/travigo/bustracker/pkg/config"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/database"
	"github.com/travigo/bustracker/pkg/history"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Print the dashboard metrics for the persisted search history",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "since",
				Usage: "only include searches made within this duration",
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

			delayReference, err := ParseDelayReference(cfg.DelayReference)
			if err != nil {
				return err
			}

			if err := database.Connect(true); err != nil {
				return err
			}
			defer database.Disconnect(context.Background())

			since := time.Time{}
			if c.Duration("since") > 0 {
				since = time.Now().Add(-c.Duration("since"))
			}

			events, err := history.NewMongoRecorder().SearchEvents(c.Context, since)
			if err != nil {
				return err
			}

			aggregator := &Aggregator{Location: cfg.Timezone, DelayReference: delayReference}
			metrics := aggregator.Compute(events, ctdf.LocationState{}, routes.Map())

			fmt.Printf("%# v\n", pretty.Formatter(metrics))

			return nil
		},
	}
}
