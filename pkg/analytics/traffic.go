package analytics

import "github.com/travigo/bustracker/pkg/ctdf"

const (
	HeavyTrafficDelayMinutes    = 20
	ModerateTrafficDelayMinutes = 10
)

var trafficRules = []struct {
	matches func(averageDelay float64) bool
	status  ctdf.TrafficStatus
}{
	{func(averageDelay float64) bool { return averageDelay > HeavyTrafficDelayMinutes }, ctdf.TrafficStatusHeavy},
	{func(averageDelay float64) bool { return averageDelay > ModerateTrafficDelayMinutes }, ctdf.TrafficStatusModerate},
}

// ClassifyTraffic maps the unrounded average delay onto a traffic status
func ClassifyTraffic(averageDelayMinutes float64) ctdf.TrafficStatus {
	for _, rule := range trafficRules {
		if rule.matches(averageDelayMinutes) {
			return rule.status
		}
	}

	return ctdf.TrafficStatusSmooth
}
