package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/bustracker/pkg/ctdf"
)

var testNow = time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time {
	return testNow
}

func trackFor(busID string, start time.Time, points ...ctdf.RoutePoint) ctdf.BusTrack {
	for i := range points {
		points[i].RecordedAt = start.Add(time.Duration(i) * time.Minute)
	}

	return ctdf.BusTrack{BusID: busID, Points: points, LastUpdated: start}
}

func TestBusiestRoutes(t *testing.T) {
	events := []ctdf.SearchEvent{
		{From: "A", To: "B"},
		{From: "A", To: "B"},
		{From: "C", To: "D"},
	}

	assert.Equal(t, []ctdf.RouteCount{
		{RouteKey: "A - B", Count: 2},
		{RouteKey: "C - D", Count: 1},
	}, BusiestRoutes(events))
}

func TestBusiestRoutesTiesKeepEncounterOrder(t *testing.T) {
	events := []ctdf.SearchEvent{
		{From: "X", To: "Y"},
		{From: "a", To: "b"},
		{From: "A", To: "B"},
		{From: "A", To: "B"},
		{From: "a", To: "b"},
		{From: "X", To: "Y"},
		{From: "P", To: "Q"},
	}

	assert.Equal(t, []ctdf.RouteCount{
		{RouteKey: "X - Y", Count: 2},
		{RouteKey: "a - b", Count: 2},
		{RouteKey: "A - B", Count: 2},
		{RouteKey: "P - Q", Count: 1},
	}, BusiestRoutes(events))
}

func TestPeakHours(t *testing.T) {
	events := []ctdf.SearchEvent{
		{Timestamp: "2024-05-06 17:10:00"},
		{Timestamp: "2024-05-06 08:00:59"},
		{Timestamp: "2024-05-06 17:45:00"},
		{Timestamp: "2024-05-05 00:01:00"},
		{Timestamp: "not a timestamp"},
	}

	assert.Equal(t, []ctdf.HourActivity{
		{Hour: "00:00", ActivityCount: 1},
		{Hour: "08:00", ActivityCount: 1},
		{Hour: "17:00", ActivityCount: 2},
	}, PeakHours(events))
}

func TestClassifyTraffic(t *testing.T) {
	tests := []struct {
		delay    float64
		expected ctdf.TrafficStatus
	}{
		{25, ctdf.TrafficStatusHeavy},
		{20.001, ctdf.TrafficStatusHeavy},
		{20, ctdf.TrafficStatusModerate},
		{15, ctdf.TrafficStatusModerate},
		{10, ctdf.TrafficStatusSmooth},
		{5, ctdf.TrafficStatusSmooth},
		{0, ctdf.TrafficStatusSmooth},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, ClassifyTraffic(tc.delay), "delay %v", tc.delay)
	}
}

func TestSpeed(t *testing.T) {
	start := testNow.Add(-30 * time.Minute)
	track := trackFor("86B", start,
		ctdf.RoutePoint{Latitude: 11.0168, Longitude: 76.9558},
		ctdf.RoutePoint{Latitude: 11.0, Longitude: 76.9570},
		ctdf.RoutePoint{Latitude: 10.9925, Longitude: 76.9614},
	)

	distance := ctdf.DistanceKilometers(track.Points[0], track.Points[2])
	assert.InDelta(t, distance/0.5, Speed(track, testNow), 1e-9)
}

func TestSpeedWithZeroElapsedTime(t *testing.T) {
	track := ctdf.BusTrack{Points: []ctdf.RoutePoint{
		{Latitude: 11.0168, Longitude: 76.9558, RecordedAt: testNow},
		{Latitude: 10.9925, Longitude: 76.9614, RecordedAt: testNow},
	}}

	assert.Equal(t, 0.0, Speed(track, testNow))
	assert.Equal(t, 0.0, Speed(track, testNow.Add(-time.Minute)))
}

func TestSpeedNeedsTwoPoints(t *testing.T) {
	track := trackFor("86B", testNow.Add(-time.Hour), ctdf.RoutePoint{Latitude: 1, Longitude: 1})

	assert.Equal(t, 0.0, Speed(track, testNow))
}

func TestDelay(t *testing.T) {
	route := &ctdf.RouteDefinition{Schedule: []string{"07:00", "09:00", "12:00"}}

	tests := []struct {
		name      string
		now       time.Time
		reference DelayReference
		expected  float64
	}{
		{"first departure", testNow, DelayReferenceFirst, 150},
		{"before first departure", time.Date(2024, 5, 6, 6, 0, 0, 0, time.UTC), DelayReferenceFirst, 0},
		{"latest departure", testNow, DelayReferenceLatest, 30},
		{"latest before any departure", time.Date(2024, 5, 6, 6, 0, 0, 0, time.UTC), DelayReferenceLatest, 0},
		{"latest exactly on departure", time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC), DelayReferenceLatest, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			delay, ok := Delay(route, tc.now, tc.reference)
			require.True(t, ok)
			assert.InDelta(t, tc.expected, delay, 1e-9)
		})
	}
}

func TestDelayWithoutSchedule(t *testing.T) {
	_, ok := Delay(&ctdf.RouteDefinition{}, testNow, DelayReferenceFirst)
	assert.False(t, ok)

	_, ok = Delay(&ctdf.RouteDefinition{Schedule: []string{"soon"}}, testNow, DelayReferenceFirst)
	assert.False(t, ok)
}

func TestParseDelayReference(t *testing.T) {
	reference, err := ParseDelayReference("")
	require.NoError(t, err)
	assert.Equal(t, DelayReferenceFirst, reference)

	reference, err = ParseDelayReference("LATEST")
	require.NoError(t, err)
	assert.Equal(t, DelayReferenceLatest, reference)

	_, err = ParseDelayReference("nearest")
	assert.Error(t, err)
}

func TestComputeEmpty(t *testing.T) {
	aggregator := &Aggregator{Now: fixedNow, Location: time.UTC}
	table, err := ctdf.LoadRouteTable("")
	require.NoError(t, err)

	metrics := aggregator.Compute(nil, ctdf.LocationState{}, table.Map())

	assert.Equal(t, 5, metrics.TotalRoutes)
	assert.Empty(t, metrics.BusiestRoutes)
	assert.NotNil(t, metrics.BusiestRoutes)
	assert.Empty(t, metrics.PeakHours)
	assert.NotNil(t, metrics.PeakHours)
	assert.Equal(t, 0.0, metrics.AverageSpeedKmph)
	assert.Equal(t, 0.0, metrics.AverageDelayMinutes)
	assert.Equal(t, ctdf.TrafficStatusSmooth, metrics.TrafficStatus)
}

func TestCompute(t *testing.T) {
	aggregator := &Aggregator{Now: fixedNow, Location: time.UTC, DelayReference: DelayReferenceFirst}

	routes := map[string]*ctdf.RouteDefinition{
		"86B": {PrimaryIdentifier: "86B", Schedule: []string{"09:00"}},
		"20C": {PrimaryIdentifier: "20C", Schedule: []string{"09:20"}},
		"1A":  {PrimaryIdentifier: "1A", Schedule: []string{"07:00"}},
	}

	start := testNow.Add(-time.Hour)
	location := ctdf.LocationState{
		Tracks: map[string]ctdf.BusTrack{
			"86B": trackFor("86B", start,
				ctdf.RoutePoint{Latitude: 11.0168, Longitude: 76.9558},
				ctdf.RoutePoint{Latitude: 10.9925, Longitude: 76.9614},
			),
			"20C": trackFor("20C", start,
				ctdf.RoutePoint{Latitude: 10.9925, Longitude: 76.9614},
				ctdf.RoutePoint{Latitude: 10.9786, Longitude: 76.9483},
			),
			// A single point is not enough to measure the route
			"1A": trackFor("1A", start, ctdf.RoutePoint{Latitude: 11.0168, Longitude: 76.9558}),
		},
	}

	events := []ctdf.SearchEvent{
		{From: "Gandhipuram", To: "Ukkadam", Timestamp: "2024-05-06 09:01:00"},
		{From: "Ukkadam", To: "Kuniyamuthur", Timestamp: "2024-05-06 08:15:00"},
		{From: "Gandhipuram", To: "Ukkadam", Timestamp: "2024-05-06 09:20:00"},
	}

	metrics := aggregator.Compute(events, location, routes)

	assert.Equal(t, 3, metrics.TotalRoutes)
	assert.Equal(t, []ctdf.RouteCount{
		{RouteKey: "Gandhipuram - Ukkadam", Count: 2},
		{RouteKey: "Ukkadam - Kuniyamuthur", Count: 1},
	}, metrics.BusiestRoutes)
	assert.Equal(t, []ctdf.HourActivity{
		{Hour: "08:00", ActivityCount: 1},
		{Hour: "09:00", ActivityCount: 2},
	}, metrics.PeakHours)

	expectedSpeed := (ctdf.DistanceKilometers(location.Tracks["86B"].Points[0], location.Tracks["86B"].Points[1]) +
		ctdf.DistanceKilometers(location.Tracks["20C"].Points[0], location.Tracks["20C"].Points[1])) / 2
	assert.InDelta(t, expectedSpeed, metrics.AverageSpeedKmph, 0.005)

	// 86B is 30 minutes late and 20C is 10 minutes late
	assert.Equal(t, 20.0, metrics.AverageDelayMinutes)
	assert.Equal(t, ctdf.TrafficStatusModerate, metrics.TrafficStatus)
}

func TestComputeClassifiesBeforeRounding(t *testing.T) {
	now := time.Date(2024, 5, 6, 9, 20, 0, 240*int(time.Millisecond), time.UTC)
	aggregator := &Aggregator{Now: func() time.Time { return now }, Location: time.UTC}

	routes := map[string]*ctdf.RouteDefinition{
		"86B": {PrimaryIdentifier: "86B", Schedule: []string{"09:00"}},
	}
	location := ctdf.LocationState{
		Tracks: map[string]ctdf.BusTrack{
			"86B": trackFor("86B", now.Add(-time.Hour),
				ctdf.RoutePoint{Latitude: 1, Longitude: 1},
				ctdf.RoutePoint{Latitude: 1, Longitude: 1.01},
			),
		},
	}

	metrics := aggregator.Compute(nil, location, routes)

	assert.Equal(t, 20.0, metrics.AverageDelayMinutes)
	assert.Equal(t, ctdf.TrafficStatusHeavy, metrics.TrafficStatus)
}

func TestComputeFallsBackToSharedRouteHistory(t *testing.T) {
	aggregator := &Aggregator{Now: fixedNow, Location: time.UTC, DelayReference: DelayReferenceFirst}

	routes := map[string]*ctdf.RouteDefinition{
		"86B": {PrimaryIdentifier: "86B", Schedule: []string{"09:00"}},
	}

	// Two reports without a bus number, 30 minutes apart
	start := testNow.Add(-time.Hour)
	location := ctdf.LocationState{
		RouteHistory: []ctdf.RoutePoint{
			{Latitude: 11.0168, Longitude: 76.9558, RecordedAt: start},
			{Latitude: 10.9925, Longitude: 76.9614, RecordedAt: start.Add(30 * time.Minute)},
		},
		Tracks: map[string]ctdf.BusTrack{},
	}

	metrics := aggregator.Compute(nil, location, routes)

	assert.InDelta(t, 2.76, metrics.AverageSpeedKmph, 0.01)
	assert.Equal(t, 30.0, metrics.AverageDelayMinutes)
	assert.Equal(t, ctdf.TrafficStatusHeavy, metrics.TrafficStatus)
}

func TestComputePrefersRouteTrackOverSharedHistory(t *testing.T) {
	aggregator := &Aggregator{Now: fixedNow, Location: time.UTC, DelayReference: DelayReferenceFirst}

	routes := map[string]*ctdf.RouteDefinition{
		"86B": {PrimaryIdentifier: "86B", Schedule: []string{"09:00"}},
	}

	start := testNow.Add(-time.Hour)
	location := ctdf.LocationState{
		RouteHistory: []ctdf.RoutePoint{
			{Latitude: 0, Longitude: 0, RecordedAt: start},
			{Latitude: 1, Longitude: 1, RecordedAt: start.Add(time.Minute)},
		},
		Tracks: map[string]ctdf.BusTrack{
			"86B": trackFor("86B", start,
				ctdf.RoutePoint{Latitude: 11.0168, Longitude: 76.9558},
				ctdf.RoutePoint{Latitude: 10.9925, Longitude: 76.9614},
			),
		},
	}

	metrics := aggregator.Compute(nil, location, routes)

	assert.InDelta(t, 2.76, metrics.AverageSpeedKmph, 0.01)
}
