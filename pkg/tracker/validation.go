package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

func ValidateCoordinates(latitude float64, longitude float64) error {
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, latitude)
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, longitude)
	}

	return nil
}

// ParseCoordinate accepts a JSON number or a numeric string
func ParseCoordinate(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return parseCoordinateString(v.String())
	case string:
		return parseCoordinateString(v)
	case nil:
		return 0, fmt.Errorf("%w: missing value", ErrInvalidCoordinate)
	default:
		return 0, fmt.Errorf("%w: unsupported value %v", ErrInvalidCoordinate, value)
	}
}

func parseCoordinateString(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidCoordinate, value)
	}

	return parsed, nil
}
