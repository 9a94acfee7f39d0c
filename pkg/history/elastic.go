package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/travigo/bustracker/pkg/ctdf"
)

type searchEventDocument struct {
	ctdf.SearchEvent

	RouteKey     string    `json:"route_key"`
	MatchedCount int       `json:"matched_count"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type locationEventDocument struct {
	ctdf.LocationRecord

	Location map[string]float64 `json:"location"`
}

// ElasticRecorder indexes history documents into weekly indexes
type ElasticRecorder struct {
	Index func(indexName string, document io.ReadSeeker)
}

func weeklyIndexName(prefix string, t time.Time) string {
	year, week := t.ISOWeek()

	return fmt.Sprintf("%s-%d-%d", prefix, year, week)
}

func (r *ElasticRecorder) RecordSearch(_ context.Context, event ctdf.SearchEvent) error {
	document, err := json.Marshal(searchEventDocument{
		SearchEvent:  event,
		RouteKey:     event.RouteKey(),
		MatchedCount: len(event.MatchedBusIDs),
		RecordedAt:   event.RecordedAt,
	})
	if err != nil {
		return err
	}

	r.Index(weeklyIndexName("bustracker-search-events", event.RecordedAt), bytes.NewReader(document))

	return nil
}

func (r *ElasticRecorder) RecordLocation(_ context.Context, record ctdf.LocationRecord) error {
	document, err := json.Marshal(locationEventDocument{
		LocationRecord: record,
		Location: map[string]float64{
			"lat": record.Latitude,
			"lon": record.Longitude,
		},
	})
	if err != nil {
		return err
	}

	r.Index(weeklyIndexName("bustracker-location-events", record.RecordedAt), bytes.NewReader(document))

	return nil
}
