package geolocation

import (
	"context"

	"googlemaps.github.io/maps"
)

type geolocator interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// GoogleSource uses the Google Maps Geolocation API
type GoogleSource struct {
	client geolocator
}

func NewGoogleSource(apiKey string) (*GoogleSource, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleSource{client: client}, nil
}

func (s *GoogleSource) Name() string {
	return "google"
}

func (s *GoogleSource) Attempt(ctx context.Context) (Fix, error) {
	result, err := s.client.Geolocate(ctx, &maps.GeolocationRequest{ConsiderIP: true})
	if err != nil {
		return Fix{}, err
	}

	return Fix{
		Latitude:       result.Location.Lat,
		Longitude:      result.Location.Lng,
		AccuracyMeters: result.Accuracy,
	}, nil
}
