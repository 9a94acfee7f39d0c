package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/bustracker/pkg/config"
	"github.com/travigo/bustracker/pkg/ctdf"
)

func TestDashboardUsesReportsWithoutBusNumber(t *testing.T) {
	cfg, err := config.Load(map[string]string{"BUSTRACKER_TIMEZONE": "UTC"})
	require.NoError(t, err)

	routes, err := ctdf.NewRouteTable([]*ctdf.RouteDefinition{
		{PrimaryIdentifier: "86B", From: "Gandhipuram", To: "Ukkadam", Schedule: []string{"09:00"}},
	})
	require.NoError(t, err)

	now := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	application, err := New(cfg, routes, Options{Now: func() time.Time { return now }})
	require.NoError(t, err)

	_, err = application.Tracker.Update(11.0168, 76.9558, "")
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, err = application.Tracker.Update(10.9925, 76.9614, "")
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	metrics := application.Dashboard()

	assert.Len(t, application.Tracker.Read().RouteHistory, 2)
	assert.InDelta(t, 2.76, metrics.AverageSpeedKmph, 0.01)
	assert.Equal(t, 60.0, metrics.AverageDelayMinutes)
	assert.Equal(t, ctdf.TrafficStatusHeavy, metrics.TrafficStatus)
}
