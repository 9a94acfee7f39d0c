package occupancy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/redis_client"
)

type detectionStore interface {
	Get(ctx context.Context, key any) (string, error)
	Set(ctx context.Context, key any, object string, options ...store.Option) error
}

// CachedDetector remembers successful detections for a short time so a burst
// of searches for the same route only runs the detector once
type CachedDetector struct {
	Detector Detector

	store detectionStore
}

func NewCachedDetector(detector Detector, ttl time.Duration) *CachedDetector {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(ttl))

	return &CachedDetector{
		Detector: detector,
		store:    cache.New[string](redisStore),
	}
}

func detectionCacheKey(route *ctdf.RouteDefinition) string {
	return fmt.Sprintf("bustracker:detection:%s", route.PrimaryIdentifier)
}

func (c *CachedDetector) Detect(ctx context.Context, route *ctdf.RouteDefinition) (Detection, error) {
	cacheKey := detectionCacheKey(route)

	if cachedValue, err := c.store.Get(ctx, cacheKey); err == nil {
		var detection Detection
		if err := json.Unmarshal([]byte(cachedValue), &detection); err == nil {
			return detection, nil
		}
	}

	detection, err := c.Detector.Detect(ctx, route)
	if err != nil {
		return Detection{}, err
	}

	detectionJSON, _ := json.Marshal(detection)
	if err := c.store.Set(ctx, cacheKey, string(detectionJSON)); err != nil {
		log.Error().Err(err).Str("key", cacheKey).Msg("Failed to cache detection")
	}

	return detection, nil
}
