package occupancy

import "github.com/travigo/bustracker/pkg/ctdf"

const (
	DefaultTotalSeats = 48

	AlmostFullBelowEmptySeats = 10
	PlentyAboveEmptySeats     = 30
)

// Evaluated in order, the first match wins
var statusRules = []struct {
	matches func(emptySeats int) bool
	status  ctdf.OccupancyStatus
}{
	{func(emptySeats int) bool { return emptySeats < AlmostFullBelowEmptySeats }, ctdf.OccupancyStatusAlmostFull},
	{func(emptySeats int) bool { return emptySeats > PlentyAboveEmptySeats }, ctdf.OccupancyStatusPlenty},
}

// Classify turns an occupant count into the number of empty seats and an
// occupancy status. Counts above the seat total leave zero empty seats.
func Classify(occupantCount int, totalSeats int) ctdf.OccupancyResult {
	if occupantCount < 0 {
		occupantCount = 0
	}

	emptySeats := totalSeats - occupantCount
	if emptySeats < 0 {
		emptySeats = 0
	}

	return ctdf.OccupancyResult{
		EmptySeats: emptySeats,
		Status:     statusFor(emptySeats),
	}
}

func statusFor(emptySeats int) ctdf.OccupancyStatus {
	for _, rule := range statusRules {
		if rule.matches(emptySeats) {
			return rule.status
		}
	}

	return ctdf.OccupancyStatusNormal
}

// Failure is the result reported for a route whose detection failed
func Failure(err error) ctdf.OccupancyResult {
	message := err.Error()

	return ctdf.OccupancyResult{
		EmptySeats: 0,
		Status:     ctdf.OccupancyStatusError,
		Error:      &message,
	}
}
