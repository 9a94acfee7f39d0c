package analytics

import (
	"fmt"

	"github.com/travigo/bustracker/pkg/ctdf"
	"golang.org/x/exp/slices"
)

// BusiestRoutes counts searches per exact "{from} - {to}" pair, most
// searched first. Pairs with the same count keep the order they were first
// seen in.
func BusiestRoutes(events []ctdf.SearchEvent) []ctdf.RouteCount {
	counts := []ctdf.RouteCount{}
	positions := map[string]int{}

	for _, event := range events {
		routeKey := event.RouteKey()

		position, exists := positions[routeKey]
		if !exists {
			position = len(counts)
			positions[routeKey] = position
			counts = append(counts, ctdf.RouteCount{RouteKey: routeKey})
		}

		counts[position].Count += 1
	}

	slices.SortStableFunc(counts, func(a, b ctdf.RouteCount) int {
		return b.Count - a.Count
	})

	return counts
}

// PeakHours counts searches per hour of day in ascending hour order
func PeakHours(events []ctdf.SearchEvent) []ctdf.HourActivity {
	hourActivity := map[string]int{}

	for _, event := range events {
		hour, ok := event.Hour()
		if !ok {
			continue
		}

		hourActivity[hour] += 1
	}

	hours := make([]string, 0, len(hourActivity))
	for hour := range hourActivity {
		hours = append(hours, hour)
	}
	slices.Sort(hours)

	peakHours := make([]ctdf.HourActivity, 0, len(hours))
	for _, hour := range hours {
		peakHours = append(peakHours, ctdf.HourActivity{
			Hour:          fmt.Sprintf("%s:00", hour),
			ActivityCount: hourActivity[hour],
		})
	}

	return peakHours
}
