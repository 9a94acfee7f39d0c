package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/travigo/bustracker/pkg/ctdf"
)

type DelayReference string

const (
	// DelayReferenceFirst measures delay against the first departure of the day
	DelayReferenceFirst DelayReference = "first"
	// DelayReferenceLatest measures delay against the most recent departure
	// that should already have left
	DelayReferenceLatest DelayReference = "latest"
)

func ParseDelayReference(value string) (DelayReference, error) {
	switch reference := DelayReference(strings.ToLower(value)); reference {
	case "", DelayReferenceFirst:
		return DelayReferenceFirst, nil
	case DelayReferenceLatest:
		return DelayReferenceLatest, nil
	default:
		return "", fmt.Errorf("unknown delay reference %s", value)
	}
}

// Speed is the geodesic distance between the first and last point of the
// track divided by the hours elapsed since the first point was recorded.
// Tracks with fewer than two points or no elapsed time have zero speed.
func Speed(track ctdf.BusTrack, now time.Time) float64 {
	if len(track.Points) < 2 {
		return 0
	}

	elapsedHours := now.Sub(track.WindowStart()).Hours()
	if elapsedHours <= 0 {
		return 0
	}

	distance := ctdf.DistanceKilometers(track.Points[0], track.Points[len(track.Points)-1])

	return distance / elapsedHours
}

// Delay returns the minutes since the reference departure of the route
// today, never negative. The second value is false when the route has no
// usable schedule.
func Delay(route *ctdf.RouteDefinition, now time.Time, reference DelayReference) (float64, bool) {
	departures := route.ScheduledDepartures(now)
	if len(departures) == 0 {
		return 0, false
	}

	scheduled := departures[0]

	if reference == DelayReferenceLatest {
		var latest *time.Time
		for i, departure := range departures {
			if departure.After(now) {
				continue
			}
			if latest == nil || departure.After(*latest) {
				latest = &departures[i]
			}
		}

		if latest == nil {
			return 0, true
		}
		scheduled = *latest
	}

	delay := now.Sub(scheduled).Minutes()
	if delay < 0 {
		delay = 0
	}

	return delay, true
}
