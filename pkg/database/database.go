package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

const defaultMongoDatabase = "bus_tracking"

// Connect sets up the MongoDB connection. MongoDB is skipped when no
// connection string is configured unless required is set.
func Connect(required bool) error {
	env := util.GetEnvironmentVariables()

	connectionString := env["BUSTRACKER_MONGODB_CONNECTION"]
	dbName := defaultMongoDatabase

	if connectionString == "" {
		if required {
			return errors.New("BUSTRACKER_MONGODB_CONNECTION is not set")
		}

		log.Info().Msg("Skipping MongoDB setup")
		return nil
	}

	if env["BUSTRACKER_MONGODB_DATABASE"] != "" {
		dbName = env["BUSTRACKER_MONGODB_DATABASE"]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}

	createIndexes()

	log.Info().Str("database", dbName).Msg("MongoDB client setup")

	return nil
}

// Connected reports whether a MongoDB connection has been set up
func Connected() bool {
	return MongoGlobalInstance != nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}

func Disconnect(ctx context.Context) error {
	if MongoGlobalInstance == nil {
		return nil
	}

	return MongoGlobalInstance.Client.Disconnect(ctx)
}
