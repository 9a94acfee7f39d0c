package occupancy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/config"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/redis_client"
)

var (
	ErrDetectorUnavailable = errors.New("detector unavailable")
	ErrImageNotFound       = errors.New("image not found")
)

// Detection is what the external detector reports for a route image
type Detection struct {
	OccupantCount int    `json:"occupant_count"`
	DetectedImage string `json:"detected_image"`
}

type Detector interface {
	Detect(ctx context.Context, route *ctdf.RouteDefinition) (Detection, error)
}

// Evaluate runs the detector for the route and classifies the result. A
// failed detection is reported as an ERROR result rather than an error.
func Evaluate(ctx context.Context, detector Detector, route *ctdf.RouteDefinition, totalSeats int) ctdf.OccupancyResult {
	detection, err := detector.Detect(ctx, route)
	if err != nil {
		log.Warn().Err(err).Str("route", route.PrimaryIdentifier).Msg("Occupancy detection failed")
		return Failure(err)
	}

	result := Classify(detection.OccupantCount, totalSeats)

	detectedImage := detection.DetectedImage
	if detectedImage == "" {
		detectedImage = route.DetectedImageRef
	}
	if detectedImage != "" {
		imageURL := fmt.Sprintf("/%s", strings.TrimPrefix(detectedImage, "/"))
		result.ImageURL = &imageURL
	}

	return result
}

// Unavailable is used when no detector has been configured
type Unavailable struct{}

func (Unavailable) Detect(context.Context, *ctdf.RouteDefinition) (Detection, error) {
	return Detection{}, ErrDetectorUnavailable
}

// NewDetector builds the detector for the configured detection service,
// cached in Redis when a connection is available
func NewDetector(cfg *config.Config) Detector {
	if cfg.DetectorURL == "" {
		log.Warn().Msg("No occupancy detector configured, bus searches will not return results")
		return Unavailable{}
	}

	var detector Detector = NewHTTPDetector(cfg.DetectorURL)

	if redis_client.Client != nil && cfg.DetectionCacheTTL > 0 {
		detector = NewCachedDetector(detector, cfg.DetectionCacheTTL)
	}

	return detector
}
