package redis_client

import (
	"context"
	"errors"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionPassword = ""
const defaultDatabase = 0

// Connect sets up the Redis client and queue connection. Redis is skipped
// when no address is configured unless required is set.
func Connect(required bool) error {
	env := util.GetEnvironmentVariables()

	address := env["BUSTRACKER_REDIS_ADDRESS"]
	password := defaultConnectionPassword
	database := defaultDatabase

	if address == "" {
		if required {
			return errors.New("BUSTRACKER_REDIS_ADDRESS is not set")
		}

		log.Info().Msg("Skipping Redis setup")
		return nil
	}

	if env["BUSTRACKER_REDIS_PASSWORD"] != "" {
		password = env["BUSTRACKER_REDIS_PASSWORD"]
	}

	if env["BUSTRACKER_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["BUSTRACKER_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	errChan := make(chan error, 10)
	go logQueueErrors(errChan)

	queueConnection, err := rmq.OpenConnectionWithRedisClient("bustracker", client, errChan)
	if err != nil {
		return err
	}

	Client = client
	QueueConnection = queueConnection

	log.Info().Str("address", address).Msg("Redis client setup")

	return nil
}

func logQueueErrors(errChan <-chan error) {
	for err := range errChan {
		log.Error().Err(err).Msg("Queue error")
	}
}
