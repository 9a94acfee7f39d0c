package history

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/database"
	"github.com/travigo/bustracker/pkg/elastic_client"
)

// Recorder persists the search and location history
type Recorder interface {
	RecordSearch(ctx context.Context, event ctdf.SearchEvent) error
	RecordLocation(ctx context.Context, record ctdf.LocationRecord) error
}

// Multi records to every recorder, continuing past failures
type Multi []Recorder

func (m Multi) RecordSearch(ctx context.Context, event ctdf.SearchEvent) error {
	var errs []error
	for _, recorder := range m {
		if err := recorder.RecordSearch(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (m Multi) RecordLocation(ctx context.Context, record ctdf.LocationRecord) error {
	var errs []error
	for _, recorder := range m {
		if err := recorder.RecordLocation(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// NewRecorder records to every storage backend that has been connected
func NewRecorder() Multi {
	recorders := Multi{}

	if database.Connected() {
		recorders = append(recorders, NewMongoRecorder())
	}
	if elastic_client.Connected() {
		recorders = append(recorders, &ElasticRecorder{Index: elastic_client.IndexRequest})
	}

	if len(recorders) == 0 {
		log.Warn().Msg("No history storage configured, search and location history will not be persisted")
	}

	return recorders
}

// NewLocationRecord builds the persisted form of an accepted update
func NewLocationRecord(update ctdf.LocationUpdate) ctdf.LocationRecord {
	return ctdf.LocationRecord{
		PrimaryIdentifier: uuid.NewString(),
		BusID:             update.BusID,
		Latitude:          update.Point.Latitude,
		Longitude:         update.Point.Longitude,
		RecordedAt:        update.Timestamp,
	}
}
