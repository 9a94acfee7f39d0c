package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/analytics"
	"github.com/travigo/bustracker/pkg/busfinder"
	"github.com/travigo/bustracker/pkg/config"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/geolocation"
	"github.com/travigo/bustracker/pkg/history"
	"github.com/travigo/bustracker/pkg/notify"
	"github.com/travigo/bustracker/pkg/occupancy"
	"github.com/travigo/bustracker/pkg/searchlog"
	"github.com/travigo/bustracker/pkg/tracker"
)

const recordTimeout = 10 * time.Second

type GeolocationResolver interface {
	Resolve(ctx context.Context) (geolocation.Fix, error)
}

// Application holds every service shared by the request handlers
type Application struct {
	Config *config.Config
	Routes *ctdf.RouteTable

	Tracker    *tracker.Tracker
	SearchLog  *searchlog.Log
	Aggregator *analytics.Aggregator
	Finder     *busfinder.Finder
	Resolver   GeolocationResolver
	Notifier   notify.Notifier
	Recorder   history.Recorder

	Now func() time.Time
}

// Options supplies the external collaborators. Any left unset are replaced
// by ones that do nothing.
type Options struct {
	Detector occupancy.Detector
	Resolver GeolocationResolver
	Notifier notify.Notifier
	Recorder history.Recorder
	Now      func() time.Time
}

func New(cfg *config.Config, routes *ctdf.RouteTable, opts Options) (*Application, error) {
	delayReference, err := analytics.ParseDelayReference(cfg.DelayReference)
	if err != nil {
		return nil, err
	}

	if opts.Detector == nil {
		opts.Detector = occupancy.Unavailable{}
	}
	if opts.Resolver == nil {
		opts.Resolver = &geolocation.Resolver{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	if opts.Recorder == nil {
		opts.Recorder = history.Multi{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	searchLog := searchlog.New()

	application := &Application{
		Config: cfg,
		Routes: routes,

		Tracker: tracker.New(tracker.Config{
			Capacity: cfg.RouteHistoryCapacity,
			Now:      opts.Now,
			Location: cfg.Timezone,
			Notifier: opts.Notifier,
		}),
		SearchLog: searchLog,
		Aggregator: &analytics.Aggregator{
			Now:            opts.Now,
			Location:       cfg.Timezone,
			DelayReference: delayReference,
		},
		Finder: &busfinder.Finder{
			Routes:     routes,
			Detector:   opts.Detector,
			TotalSeats: cfg.TotalSeats,
			SearchLog:  searchLog,
			Notifier:   opts.Notifier,
			Now:        opts.Now,
			Location:   cfg.Timezone,
		},
		Resolver: opts.Resolver,
		Notifier: opts.Notifier,
		Recorder: opts.Recorder,
		Now:      opts.Now,
	}

	application.Tracker.OnUpdate(application.recordLocation)
	application.SearchLog.OnAppend(application.recordSearch)

	return application, nil
}

func (a *Application) recordLocation(update ctdf.LocationUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := a.Recorder.RecordLocation(ctx, history.NewLocationRecord(update)); err != nil {
		log.Error().Err(err).Str("bus", update.BusID).Msg("Failed to record location")
	}
}

func (a *Application) recordSearch(event ctdf.SearchEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := a.Recorder.RecordSearch(ctx, event); err != nil {
		log.Error().Err(err).Str("from", event.From).Str("to", event.To).Msg("Failed to record search")
	}
}

// Dashboard computes the metrics from the live search log and locations
func (a *Application) Dashboard() ctdf.DashboardMetrics {
	return a.Aggregator.Compute(a.SearchLog.Events(), a.Tracker.Read(), a.Routes.Map())
}

// ReplaySearchHistory seeds the search log from the persisted history
func (a *Application) ReplaySearchHistory(ctx context.Context, recorder *history.MongoRecorder) error {
	events, err := recorder.SearchEvents(ctx, time.Time{})
	if err != nil {
		return err
	}

	a.SearchLog.Replay(events)

	return nil
}
