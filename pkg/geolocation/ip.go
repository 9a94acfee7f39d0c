package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// IPAccuracyMeters is the accuracy assumed for an IP based position
const IPAccuracyMeters = 5000

type ipResponse struct {
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// IPSource looks up the position of the public IP address through an
// ip-api.com compatible endpoint
type IPSource struct {
	URL        string
	Client     *http.Client
	MaxRetries uint64
}

func NewIPSource(url string) *IPSource {
	return &IPSource{
		URL:        url,
		Client:     &http.Client{Timeout: 10 * time.Second},
		MaxRetries: 2,
	}
}

func (s *IPSource) Name() string {
	return "ip"
}

func (s *IPSource) Attempt(ctx context.Context) (Fix, error) {
	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = 200 * time.Millisecond

	return backoff.RetryWithData(func() (Fix, error) {
		return s.lookup(ctx)
	}, backoff.WithContext(backoff.WithMaxRetries(retryBackoff, s.MaxRetries), ctx))
}

func (s *IPSource) lookup(ctx context.Context) (Fix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return Fix{}, backoff.Permanent(err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Fix{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Fix{}, fmt.Errorf("ip geolocation returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return Fix{}, backoff.Permanent(fmt.Errorf("ip geolocation returned %s", resp.Status))
	}

	var response ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return Fix{}, backoff.Permanent(fmt.Errorf("decode ip geolocation: %w", err))
	}

	if response.Status != "success" {
		return Fix{}, backoff.Permanent(fmt.Errorf("ip geolocation status %q: %s", response.Status, response.Message))
	}

	return Fix{
		Latitude:       response.Latitude,
		Longitude:      response.Longitude,
		AccuracyMeters: IPAccuracyMeters,
	}, nil
}
