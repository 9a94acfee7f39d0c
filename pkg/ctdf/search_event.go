package ctdf

import (
	"fmt"
	"strings"
	"time"
)

// TimestampFormat is the layout of SearchEvent timestamps and last_updated values
const TimestampFormat = "2006-01-02 15:04:05"

type SearchEvent struct {
	PrimaryIdentifier string `json:"-" bson:"primaryidentifier"`

	From          string   `json:"from" bson:"from"`
	To            string   `json:"to" bson:"to"`
	MatchedBusIDs []string `json:"matched_bus_ids" bson:"matchedbusids"`
	Timestamp     string   `json:"timestamp" bson:"timestamp"`

	RecordedAt time.Time `json:"-" bson:"recordedat"`
}

// RouteKey is the exact "{from} - {to}" pair as submitted
func (e *SearchEvent) RouteKey() string {
	return fmt.Sprintf("%s - %s", e.From, e.To)
}

// Hour returns the two digit hour of the event timestamp, or false when the
// timestamp is not in the expected layout
func (e *SearchEvent) Hour() (string, bool) {
	parts := strings.SplitN(e.Timestamp, " ", 2)
	if len(parts) != 2 {
		return "", false
	}

	hour, _, found := strings.Cut(parts[1], ":")
	if !found || len(hour) != 2 {
		return "", false
	}

	return hour, true
}

// BusMatch is a route returned by a bus search together with its occupancy
type BusMatch struct {
	BusNumber  string          `json:"busNumber"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	FromCoords Coordinates     `json:"from_coords"`
	ToCoords   Coordinates     `json:"to_coords"`
	Stops      []RouteStop     `json:"stops"`
	Schedule   []string        `json:"schedule"`
	EmptySeats int             `json:"emptySeats"`
	Status     OccupancyStatus `json:"status"`
	StatusText string          `json:"status_text"`
	ImageURL   *string         `json:"image_url"`
}
