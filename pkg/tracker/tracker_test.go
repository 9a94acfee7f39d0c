package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/bustracker/pkg/ctdf"
)

type recordingNotifier struct {
	notifications chan ctdf.Notification
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{notifications: make(chan ctdf.Notification, 100)}
}

func (n *recordingNotifier) Notify(_ context.Context, notification ctdf.Notification) error {
	n.notifications <- notification
	return nil
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, ctdf.Notification) error {
	return errors.New("sms gateway down")
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestReadBeforeAnyUpdate(t *testing.T) {
	tracker := New(Config{})

	state := tracker.Read()
	assert.Nil(t, state.Current)
	assert.Nil(t, state.LastUpdated)
	assert.NotNil(t, state.RouteHistory)
	assert.Empty(t, state.RouteHistory)

	encoded, err := json.Marshal(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"current_location":null,"last_updated":null,"route_history":[]}`, string(encoded))
}

func TestUpdateThenRead(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 5, 7, 0, time.UTC)
	tracker := New(Config{Now: fixedClock(now), Location: time.UTC})

	update, err := tracker.Update(11.0168, 76.9558, "86B")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04 09:05:07", update.LastUpdated)
	assert.Equal(t, "86B", update.BusID)

	state := tracker.Read()
	require.NotNil(t, state.Current)
	assert.Equal(t, 11.0168, state.Current.Latitude)
	assert.Equal(t, 76.9558, state.Current.Longitude)
	assert.Equal(t, now, state.Current.Timestamp)
	require.NotNil(t, state.LastUpdated)
	assert.Equal(t, "2024-03-04 09:05:07", *state.LastUpdated)
	assert.Equal(t, []ctdf.RoutePoint{{Latitude: 11.0168, Longitude: 76.9558, RecordedAt: now}}, state.RouteHistory)
}

func TestRouteHistoryNeverExceedsCapacity(t *testing.T) {
	for _, n := range []int{0, 1, 5, 9, 10, 11, 25} {
		tracker := New(Config{})

		for i := 0; i < n; i++ {
			_, err := tracker.Update(float64(i), float64(i), "1A")
			require.NoError(t, err)
		}

		expected := n
		if expected > 10 {
			expected = 10
		}
		assert.Len(t, tracker.Read().RouteHistory, expected, "after %d updates", n)
	}
}

func TestFIFOEviction(t *testing.T) {
	tracker := New(Config{})

	for i := 1; i <= 11; i++ {
		_, err := tracker.Update(float64(i), float64(-i), "S9")
		require.NoError(t, err)
	}

	history := tracker.Read().RouteHistory
	require.Len(t, history, 10)
	for i, point := range history {
		assert.Equal(t, float64(i+2), point.Latitude)
		assert.Equal(t, float64(-(i + 2)), point.Longitude)
	}
}

func TestCustomCapacity(t *testing.T) {
	tracker := New(Config{Capacity: 3})

	for i := 1; i <= 5; i++ {
		_, err := tracker.Update(float64(i), 0, "")
		require.NoError(t, err)
	}

	history := tracker.Read().RouteHistory
	require.Len(t, history, 3)
	assert.Equal(t, 3, tracker.Capacity())
	assert.Equal(t, 3.0, history[0].Latitude)
	assert.Equal(t, 5.0, history[2].Latitude)
}

func TestCoordinateBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		valid     bool
	}{
		{"upper corner", 90.0, 180.0, true},
		{"lower corner", -90.0, -180.0, true},
		{"origin", 0, 0, true},
		{"latitude too high", 90.0001, 0, false},
		{"latitude too low", -90.0001, 0, false},
		{"longitude too high", 0, 180.0001, false},
		{"longitude too low", 0, -180.0001, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tracker := New(Config{})
			_, err := tracker.Update(10, 20, "86B")
			require.NoError(t, err)
			before := tracker.Read()

			_, err = tracker.Update(tc.latitude, tc.longitude, "86B")
			if tc.valid {
				assert.NoError(t, err)
				assert.Equal(t, tc.latitude, tracker.Read().Current.Latitude)
				return
			}

			assert.ErrorIs(t, err, ErrInvalidCoordinate)
			assert.Equal(t, before, tracker.Read())
		})
	}
}

func TestSnapshotIsIsolatedFromLaterUpdates(t *testing.T) {
	tracker := New(Config{})
	_, err := tracker.Update(1, 1, "86B")
	require.NoError(t, err)

	snapshot := tracker.Read()

	for i := 2; i <= 12; i++ {
		_, err := tracker.Update(float64(i), float64(i), "86B")
		require.NoError(t, err)
	}

	require.Len(t, snapshot.RouteHistory, 1)
	assert.Equal(t, 1.0, snapshot.RouteHistory[0].Latitude)
	assert.Equal(t, 1.0, snapshot.Current.Latitude)
	assert.Len(t, snapshot.Tracks["86B"].Points, 1)
}

func TestTracksAreKeyedPerBus(t *testing.T) {
	tracker := New(Config{})

	_, err := tracker.Update(1, 1, "86b")
	require.NoError(t, err)
	_, err = tracker.Update(2, 2, " 86B ")
	require.NoError(t, err)
	_, err = tracker.Update(3, 3, "20C")
	require.NoError(t, err)
	_, err = tracker.Update(4, 4, "")
	require.NoError(t, err)

	state := tracker.Read()
	assert.Len(t, state.RouteHistory, 4)
	require.Len(t, state.Tracks, 2)
	assert.Len(t, state.Tracks["86B"].Points, 2)
	assert.Len(t, state.Tracks["20C"].Points, 1)
}

func TestConcurrentUpdatesKeepBufferBounded(t *testing.T) {
	tracker := New(Config{})

	var wg sync.WaitGroup
	for worker := 0; worker < 20; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := tracker.Update(float64(worker%90), float64(i%180), "3E")
				assert.NoError(t, err)

				state := tracker.Read()
				assert.LessOrEqual(t, len(state.RouteHistory), 10)
			}
		}(worker)
	}
	wg.Wait()

	state := tracker.Read()
	assert.Len(t, state.RouteHistory, 10)
	assert.Len(t, state.Tracks["3E"].Points, 10)
}

func TestUpdateSendsNotification(t *testing.T) {
	notifier := newRecordingNotifier()
	now := time.Date(2024, 3, 4, 9, 5, 7, 0, time.UTC)
	tracker := New(Config{Notifier: notifier, Now: fixedClock(now), Location: time.UTC})

	_, err := tracker.Update(11.0168, 76.9558, "86B")
	require.NoError(t, err)

	select {
	case notification := <-notifier.notifications:
		assert.Equal(t, ctdf.NotificationTypeLocationUpdated, notification.Type)
		assert.Equal(t, "86B", notification.BusID)
		assert.Equal(t, "Bus 86B location updated: 11.0168, 76.9558 at 2024-03-04 09:05:07", notification.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification")
	}
}

func TestRejectedUpdateSendsNothing(t *testing.T) {
	notifier := newRecordingNotifier()
	tracker := New(Config{Notifier: notifier})

	_, err := tracker.Update(91, 0, "86B")
	require.ErrorIs(t, err, ErrInvalidCoordinate)

	select {
	case notification := <-notifier.notifications:
		t.Fatalf("unexpected notification %v", notification)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotificationFailureDoesNotAffectUpdate(t *testing.T) {
	tracker := New(Config{Notifier: failingNotifier{}})

	_, err := tracker.Update(10, 10, "1A")
	require.NoError(t, err)
	assert.Len(t, tracker.Read().RouteHistory, 1)
}

func TestUpdateHooks(t *testing.T) {
	tracker := New(Config{})
	updates := make(chan ctdf.LocationUpdate, 1)
	tracker.OnUpdate(func(update ctdf.LocationUpdate) {
		updates <- update
	})

	_, err := tracker.Update(10.5, 76.5, "20C")
	require.NoError(t, err)

	select {
	case update := <-updates:
		assert.Equal(t, "20C", update.BusID)
		assert.Equal(t, 10.5, update.Point.Latitude)
	case <-time.After(2 * time.Second):
		t.Fatal("expected hook to run")
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
		valid    bool
	}{
		{"float", 11.5, 11.5, true},
		{"int", 11, 11, true},
		{"json number", json.Number("76.9558"), 76.9558, true},
		{"numeric string", " 10.99 ", 10.99, true},
		{"negative string", "-45", -45, true},
		{"word", "north", 0, false},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			value, err := ParseCoordinate(tc.input)
			if !tc.valid {
				assert.ErrorIs(t, err, ErrInvalidCoordinate)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, value)
		})
	}
}

func TestHooksReceiveUpdatesInOrder(t *testing.T) {
	tracker := New(Config{Capacity: 3})

	received := make(chan float64, 100)
	tracker.OnUpdate(func(update ctdf.LocationUpdate) {
		received <- update.Point.Latitude
	})

	for i := 0; i < 100; i++ {
		_, err := tracker.Update(float64(i)*0.5, 76.9, "86B")
		require.NoError(t, err)
	}

	for i := 0; i < 100; i++ {
		select {
		case latitude := <-received:
			assert.Equal(t, float64(i)*0.5, latitude)
		case <-time.After(2 * time.Second):
			t.Fatalf("missing update %d", i)
		}
	}
}
