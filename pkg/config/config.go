package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/bustracker/pkg/util"

	_ "time/tzdata"
)

const (
	DefaultTotalSeats           = 48
	DefaultRouteHistoryCapacity = 10
	DefaultTimezone             = "Asia/Kolkata"
	DefaultIPGeolocationURL     = "http://ip-api.com/json"
	DefaultDetectionCacheTTL    = 30 * time.Second
)

type Config struct {
	TotalSeats           int `validate:"gt=0"`
	RouteHistoryCapacity int `validate:"gt=0"`

	Timezone *time.Location `validate:"required"`

	// Empty means the built in route table
	RoutesFile string `validate:"omitempty,file"`

	DelayReference string `validate:"oneof=first latest"`

	GeolocationOrder []string `validate:"min=1,dive,oneof=google ip"`
	GoogleMapsAPIKey string
	IPGeolocationURL string `validate:"required,url"`

	DetectorURL       string        `validate:"omitempty,url"`
	DetectionCacheTTL time.Duration `validate:"gte=0"`

	Twilio   TwilioConfig
	Firebase FirebaseConfig

	NotifyFilter string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
}

func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != "" && c.ToNumber != ""
}

type FirebaseConfig struct {
	ServiceAccount string
	Topic          string
}

func (c FirebaseConfig) Enabled() bool {
	return c.ServiceAccount != "" && c.Topic != ""
}

// LoadFromEnvironment reads the configuration from the process environment,
// after loading a .env file from the working directory if one exists
func LoadFromEnvironment() (*Config, error) {
	util.LoadDotEnv(".env")

	return Load(util.GetEnvironmentVariables())
}

func Load(env map[string]string) (*Config, error) {
	cfg := &Config{
		TotalSeats:           DefaultTotalSeats,
		RouteHistoryCapacity: DefaultRouteHistoryCapacity,
		DelayReference:       "first",
		GeolocationOrder:     []string{"google", "ip"},
		IPGeolocationURL:     DefaultIPGeolocationURL,
		DetectionCacheTTL:    DefaultDetectionCacheTTL,

		RoutesFile:       env["BUSTRACKER_ROUTES_FILE"],
		GoogleMapsAPIKey: env["BUSTRACKER_GOOGLE_MAPS_API_KEY"],
		DetectorURL:      env["BUSTRACKER_DETECTOR_URL"],
		NotifyFilter:     env["BUSTRACKER_NOTIFY_FILTER"],

		Twilio: TwilioConfig{
			AccountSID: env["BUSTRACKER_TWILIO_ACCOUNT_SID"],
			AuthToken:  env["BUSTRACKER_TWILIO_AUTH_TOKEN"],
			FromNumber: env["BUSTRACKER_TWILIO_NUMBER"],
			ToNumber:   env["BUSTRACKER_SMS_TO_NUMBER"],
		},
		Firebase: FirebaseConfig{
			ServiceAccount: env["BUSTRACKER_FIREBASE_SERVICE_ACCOUNT"],
			Topic:          env["BUSTRACKER_FIREBASE_TOPIC"],
		},
	}

	var err error

	if value := env["BUSTRACKER_TOTAL_SEATS"]; value != "" {
		if cfg.TotalSeats, err = strconv.Atoi(value); err != nil {
			return nil, fmt.Errorf("invalid BUSTRACKER_TOTAL_SEATS: %w", err)
		}
	}

	if value := env["BUSTRACKER_ROUTE_HISTORY_CAPACITY"]; value != "" {
		if cfg.RouteHistoryCapacity, err = strconv.Atoi(value); err != nil {
			return nil, fmt.Errorf("invalid BUSTRACKER_ROUTE_HISTORY_CAPACITY: %w", err)
		}
	}

	timezone := DefaultTimezone
	if value := env["BUSTRACKER_TIMEZONE"]; value != "" {
		timezone = value
	}
	if cfg.Timezone, err = time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("invalid BUSTRACKER_TIMEZONE: %w", err)
	}

	if value := env["BUSTRACKER_DELAY_REFERENCE"]; value != "" {
		cfg.DelayReference = strings.ToLower(value)
	}

	if value := env["BUSTRACKER_GEOLOCATION_ORDER"]; value != "" {
		cfg.GeolocationOrder = []string{}
		for _, source := range strings.Split(value, ",") {
			if source = strings.ToLower(strings.TrimSpace(source)); source != "" {
				cfg.GeolocationOrder = append(cfg.GeolocationOrder, source)
			}
		}
	}

	if value := env["BUSTRACKER_IP_GEOLOCATION_URL"]; value != "" {
		cfg.IPGeolocationURL = value
	}

	if value := env["BUSTRACKER_DETECTION_CACHE_TTL"]; value != "" {
		if cfg.DetectionCacheTTL, err = time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("invalid BUSTRACKER_DETECTION_CACHE_TTL: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
