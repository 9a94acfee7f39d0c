package busfinder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/notify"
	"github.com/travigo/bustracker/pkg/occupancy"
	"github.com/travigo/bustracker/pkg/searchlog"
	"github.com/travigo/bustracker/pkg/util"
)

var ErrMissingParameters = errors.New("missing 'from' or 'to' location parameters")

const maxConcurrentDetections = 4

// Finder answers "which buses run from A to B and how full are they"
type Finder struct {
	Routes     *ctdf.RouteTable
	Detector   occupancy.Detector
	TotalSeats int
	SearchLog  *searchlog.Log
	Notifier   notify.Notifier

	Now      func() time.Time
	Location *time.Location
}

func (f *Finder) now() time.Time {
	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	if f.Location != nil {
		now = now.In(f.Location)
	}

	return now
}

// Search returns every route matching from and to, ignoring case, whose
// occupancy could be determined. Every search is recorded in the search log,
// even when nothing matched.
func (f *Finder) Search(ctx context.Context, from string, to string) ([]ctdf.BusMatch, error) {
	if from == "" || to == "" {
		return nil, ErrMissingParameters
	}

	// The event outlives the caller's strings
	from, to = strings.Clone(from), strings.Clone(to)

	var candidates []*ctdf.RouteDefinition
	for _, route := range f.Routes.Routes {
		if strings.EqualFold(route.From, from) && strings.EqualFold(route.To, to) {
			candidates = append(candidates, route)
		}
	}

	results := make([]ctdf.OccupancyResult, len(candidates))
	detectionPool := pool.New().WithMaxGoroutines(maxConcurrentDetections)
	for i, route := range candidates {
		i, route := i, route
		detectionPool.Go(func() {
			results[i] = occupancy.Evaluate(ctx, f.Detector, route, f.TotalSeats)
		})
	}
	detectionPool.Wait()

	matches := make([]ctdf.BusMatch, 0, len(candidates))
	for i, route := range candidates {
		matches = append(matches, newBusMatch(route, results[i]))
	}
	util.InPlaceFilter(&matches, func(match ctdf.BusMatch) bool {
		return match.Status != ctdf.OccupancyStatusError
	})

	now := f.now()
	matchedBusIDs := make([]string, 0, len(matches))
	for _, match := range matches {
		matchedBusIDs = append(matchedBusIDs, match.BusNumber)
	}

	f.SearchLog.Append(ctdf.SearchEvent{
		PrimaryIdentifier: uuid.NewString(),
		From:              from,
		To:                to,
		MatchedBusIDs:     matchedBusIDs,
		Timestamp:         now.Format(ctdf.TimestampFormat),
		RecordedAt:        now,
	})

	log.Info().Str("from", from).Str("to", to).Int("matches", len(matches)).Msg("Bus search")

	notify.Background(f.Notifier, ctdf.Notification{
		Type:      ctdf.NotificationTypeBusSearch,
		Title:     "Bus search",
		Message:   searchSummary(from, to, matches),
		Timestamp: now,
	})

	return matches, nil
}

func newBusMatch(route *ctdf.RouteDefinition, result ctdf.OccupancyResult) ctdf.BusMatch {
	stops := route.Stops
	if stops == nil {
		stops = []ctdf.RouteStop{}
	}
	schedule := route.Schedule
	if schedule == nil {
		schedule = []string{}
	}

	return ctdf.BusMatch{
		BusNumber:  route.PrimaryIdentifier,
		From:       route.From,
		To:         route.To,
		FromCoords: route.FromCoords,
		ToCoords:   route.ToCoords,
		Stops:      stops,
		Schedule:   schedule,
		EmptySeats: result.EmptySeats,
		Status:     result.Status,
		StatusText: result.Status.Description(),
		ImageURL:   result.ImageURL,
	}
}

func searchSummary(from string, to string, matches []ctdf.BusMatch) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No buses found from '%s' to '%s'.", from, to)
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Bus search from '%s' to '%s' found %d bus(es):\n", from, to, len(matches))
	for _, match := range matches {
		fmt.Fprintf(&summary, "%s (%s, %d empty seats)\n", match.BusNumber, match.StatusText, match.EmptySeats)
	}

	return summary.String()
}
