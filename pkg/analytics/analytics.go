package analytics

import (
	"strings"
	"time"

	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/util"
	"golang.org/x/exp/slices"
)

const reportedPrecision = 2

// Aggregator derives the dashboard metrics from the search log and the
// tracked locations. It holds no state of its own and is safe to use
// concurrently.
type Aggregator struct {
	Now            func() time.Time
	Location       *time.Location
	DelayReference DelayReference
}

func (a *Aggregator) now() time.Time {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}

	if a.Location != nil {
		now = now.In(a.Location)
	}

	return now
}

func (a *Aggregator) Compute(events []ctdf.SearchEvent, location ctdf.LocationState, routes map[string]*ctdf.RouteDefinition) ctdf.DashboardMetrics {
	now := a.now()

	routeIdentifiers := make([]string, 0, len(routes))
	for identifier := range routes {
		routeIdentifiers = append(routeIdentifiers, identifier)
	}
	slices.Sort(routeIdentifiers)

	// Reports without a known bus number only land in the shared history
	sharedTrack := ctdf.BusTrack{Points: location.RouteHistory}

	var speeds []float64
	var delays []float64

	for _, identifier := range routeIdentifiers {
		route := routes[identifier]

		track, exists := location.Tracks[strings.ToUpper(identifier)]
		if !exists || len(track.Points) < 2 {
			track = sharedTrack
		}
		if len(track.Points) < 2 {
			continue
		}

		speeds = append(speeds, Speed(track, now))

		if delay, ok := Delay(route, now, a.DelayReference); ok {
			delays = append(delays, delay)
		}
	}

	averageDelay := average(delays)

	return ctdf.DashboardMetrics{
		TotalRoutes:         len(routes),
		BusiestRoutes:       BusiestRoutes(events),
		PeakHours:           PeakHours(events),
		AverageSpeedKmph:    util.RoundTo(average(speeds), reportedPrecision),
		AverageDelayMinutes: util.RoundTo(averageDelay, reportedPrecision),
		TrafficStatus:       ClassifyTraffic(averageDelay),
	}
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}
