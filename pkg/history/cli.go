package history

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Manage the persisted search and location history",
		Subcommands: []*cli.Command{
			{
				Name:  "export",
				Usage: "export the search history as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "file to write to, standard output when not set",
					},
					&cli.DurationFlag{
						Name:  "since",
						Usage: "only export searches made within this duration",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(true); err != nil {
						return err
					}
					defer database.Disconnect(context.Background())

					since := time.Time{}
					if c.Duration("since") > 0 {
						since = time.Now().Add(-c.Duration("since"))
					}

					events, err := NewMongoRecorder().SearchEvents(c.Context, since)
					if err != nil {
						return err
					}

					output := os.Stdout
					if c.String("output") != "" {
						file, err := os.Create(c.String("output"))
						if err != nil {
							return err
						}
						defer file.Close()
						output = file
					}

					if err := WriteSearchCSV(output, events); err != nil {
						return err
					}

					log.Info().Int("length", len(events)).Msg("Exported search history")

					return nil
				},
			},
			{
				Name:  "archive",
				Usage: "archive old location history to a bundle",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output-directory",
						Value: ".",
						Usage: "directory the bundle is written to",
					},
					&cli.DurationFlag{
						Name:  "max-age",
						Value: 24 * time.Hour,
						Usage: "archive location reports older than this",
					},
					&cli.BoolFlag{
						Name:  "delete",
						Usage: "remove archived location reports from the database",
					},
					&cli.BoolFlag{
						Name:  "cloud-upload",
						Usage: "upload the bundle to a cloud storage bucket",
					},
					&cli.StringFlag{
						Name:  "cloud-bucket-name",
						Usage: "bucket the bundle is uploaded to",
					},
				},
				Action: func(c *cli.Context) error {
					if c.Bool("cloud-upload") && c.String("cloud-bucket-name") == "" {
						return cli.Exit("--cloud-bucket-name is required with --cloud-upload", 1)
					}

					if err := database.Connect(true); err != nil {
						return err
					}
					defer database.Disconnect(context.Background())

					archiver := &Archiver{
						OutputDirectory: c.String("output-directory"),
						MaxAge:          c.Duration("max-age"),
						DeleteArchived:  c.Bool("delete"),
						CloudUpload:     c.Bool("cloud-upload"),
						CloudBucketName: c.String("cloud-bucket-name"),
						Source:          NewMongoRecorder(),
					}

					_, err := archiver.Perform(c.Context)
					return err
				},
			},
		},
	}
}
