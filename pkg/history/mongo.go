package history

import (
	"context"
	"time"

	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRecorder struct {
	SearchHistory   *mongo.Collection
	LocationHistory *mongo.Collection
}

func NewMongoRecorder() *MongoRecorder {
	return &MongoRecorder{
		SearchHistory:   database.GetCollection(database.SearchHistoryCollection),
		LocationHistory: database.GetCollection(database.LocationHistoryCollection),
	}
}

func (r *MongoRecorder) RecordSearch(ctx context.Context, event ctdf.SearchEvent) error {
	_, err := r.SearchHistory.InsertOne(ctx, event)

	return err
}

func (r *MongoRecorder) RecordLocation(ctx context.Context, record ctdf.LocationRecord) error {
	_, err := r.LocationHistory.InsertOne(ctx, record)

	return err
}

// SearchEvents returns the persisted search events recorded at or after
// since, oldest first
func (r *MongoRecorder) SearchEvents(ctx context.Context, since time.Time) ([]ctdf.SearchEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recordedat", Value: 1}})

	cursor, err := r.SearchHistory.Find(ctx, bson.M{"recordedat": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, err
	}

	events := []ctdf.SearchEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// LocationRecords returns the persisted location reports recorded before
// the cut off time, oldest first
func (r *MongoRecorder) LocationRecords(ctx context.Context, before time.Time) ([]ctdf.LocationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recordedat", Value: 1}})

	cursor, err := r.LocationHistory.Find(ctx, bson.M{"recordedat": bson.M{"$lt": before}}, opts)
	if err != nil {
		return nil, err
	}

	records := []ctdf.LocationRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *MongoRecorder) DeleteLocationRecords(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.LocationHistory.DeleteMany(ctx, bson.M{"recordedat": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
