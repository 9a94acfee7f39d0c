package geolocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/config"
)

var ErrUnavailable = errors.New("geolocation unavailable")

type Fix struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy"`
	Source         string  `json:"source"`
}

// Source is a single way of finding the current position
type Source interface {
	Name() string
	Attempt(ctx context.Context) (Fix, error)
}

// Resolver asks each source in turn and returns the first fix found
type Resolver struct {
	Sources []Source
}

func (r *Resolver) Resolve(ctx context.Context) (Fix, error) {
	for _, source := range r.Sources {
		fix, err := source.Attempt(ctx)
		if err != nil {
			log.Warn().Err(err).Str("source", source.Name()).Msg("Geolocation source failed")
			continue
		}

		fix.Source = source.Name()
		return fix, nil
	}

	return Fix{}, ErrUnavailable
}

// NewResolver builds the sources in the configured order. The Google source
// is left out when no API key is set.
func NewResolver(cfg *config.Config) (*Resolver, error) {
	resolver := &Resolver{}

	for _, name := range cfg.GeolocationOrder {
		switch name {
		case "google":
			if cfg.GoogleMapsAPIKey == "" {
				log.Warn().Msg("No Google Maps API key configured, skipping Google geolocation")
				continue
			}

			source, err := NewGoogleSource(cfg.GoogleMapsAPIKey)
			if err != nil {
				return nil, err
			}
			resolver.Sources = append(resolver.Sources, source)
		case "ip":
			resolver.Sources = append(resolver.Sources, NewIPSource(cfg.IPGeolocationURL))
		default:
			return nil, fmt.Errorf("unknown geolocation source %s", name)
		}
	}

	return resolver, nil
}
