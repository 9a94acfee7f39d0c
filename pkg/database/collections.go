package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SearchHistoryCollection   = "search_history"
	LocationHistoryCollection = "location_history"
)

func createIndexes() {
	createSearchHistoryIndexes()
	createLocationHistoryIndexes()
}

func createSearchHistoryIndexes() {
	searchHistoryCollection := GetCollection(SearchHistoryCollection)
	_, err := searchHistoryCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "primaryidentifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "recordedat", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "from", Value: 1},
				{Key: "to", Value: 1},
			},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createLocationHistoryIndexes() {
	locationHistoryCollection := GetCollection(LocationHistoryCollection)
	_, err := locationHistoryCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "primaryidentifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "busid", Value: 1},
				{Key: "recordedat", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "recordedat", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(30 * 24 * 3600), // Expire after 30 days
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
