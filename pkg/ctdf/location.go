package ctdf

import (
	"math"
	"time"
)

// RoutePoint is a single buffered position. RecordedAt is kept for speed
// estimation and is not part of the public representation.
type RoutePoint struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`

	RecordedAt time.Time `json:"-" bson:"recordedat"`
}

type CurrentLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationState is the process wide view of the most recent vehicle positions.
// Tracks holds the bounded recent history of every individual bus.
type LocationState struct {
	Current      *CurrentLocation `json:"current_location"`
	LastUpdated  *string          `json:"last_updated"`
	RouteHistory []RoutePoint     `json:"route_history"`

	Tracks map[string]BusTrack `json:"-"`
}

type BusTrack struct {
	BusID       string
	Points      []RoutePoint
	LastUpdated time.Time
}

// WindowStart is the time the oldest buffered point of the track was recorded
func (t BusTrack) WindowStart() time.Time {
	if len(t.Points) == 0 {
		return time.Time{}
	}

	return t.Points[0].RecordedAt
}

// LocationUpdate describes an accepted location report
type LocationUpdate struct {
	BusID       string
	Point       RoutePoint
	Timestamp   time.Time
	LastUpdated string
}

// LocationRecord is the persisted form of an accepted location report
type LocationRecord struct {
	PrimaryIdentifier string    `json:"primary_identifier" bson:"primaryidentifier"`
	BusID             string    `json:"bus_id" bson:"busid"`
	Latitude          float64   `json:"latitude" bson:"latitude"`
	Longitude         float64   `json:"longitude" bson:"longitude"`
	RecordedAt        time.Time `json:"recorded_at" bson:"recordedat"`
}

const (
	wgs84SemiMajorAxis = 6378137.0
	wgs84Flattening    = 1 / 298.257223563
	wgs84SemiMinorAxis = (1 - wgs84Flattening) * wgs84SemiMajorAxis

	meanEarthRadiusMeters = 6371008.8
)

// DistanceKilometers returns the geodesic distance between two points on the
// WGS-84 ellipsoid using Vincenty's inverse formula. Nearly antipodal points
// where the iteration does not converge fall back to the great-circle distance.
func DistanceKilometers(a RoutePoint, b RoutePoint) float64 {
	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return 0
	}

	L := toRadians(b.Longitude - a.Longitude)
	U1 := math.Atan((1 - wgs84Flattening) * math.Tan(toRadians(a.Latitude)))
	U2 := math.Atan((1 - wgs84Flattening) * math.Tan(toRadians(b.Latitude)))
	sinU1, cosU1 := math.Sincos(U1)
	sinU2, cosU2 := math.Sincos(U2)

	lambda := L
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64

	converged := false
	for i := 0; i < 200; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt((cosU2*sinLambda)*(cosU2*sinLambda) +
			(cosU1*sinU2-sinU1*cosU2*cosLambda)*(cosU1*sinU2-sinU1*cosU2*cosLambda))
		if sinSigma == 0 {
			return 0
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			// Equatorial line
			cos2SigmaM = 0
		}
		C := wgs84Flattening / 16 * cosSqAlpha * (4 + wgs84Flattening*(4-3*cosSqAlpha))
		previous := lambda
		lambda = L + (1-C)*wgs84Flattening*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-previous) < 1e-12 {
			converged = true
			break
		}
	}

	if !converged {
		return haversineKilometers(a, b)
	}

	uSq := cosSqAlpha * (wgs84SemiMajorAxis*wgs84SemiMajorAxis - wgs84SemiMinorAxis*wgs84SemiMinorAxis) /
		(wgs84SemiMinorAxis * wgs84SemiMinorAxis)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return wgs84SemiMinorAxis * A * (sigma - deltaSigma) / 1000
}

func haversineKilometers(a RoutePoint, b RoutePoint) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * meanEarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h))) / 1000
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
