package tracker

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/notify"
	"github.com/travigo/bustracker/pkg/util"
)

const DefaultCapacity = 10

// UpdateHook is run in the background after every accepted location update.
// Each hook sees the updates in the order they were applied.
type UpdateHook func(update ctdf.LocationUpdate)

type registeredHook struct {
	run   UpdateHook
	queue *util.SerialQueue
}

// Tracker owns the process wide LocationState. Updates are serialised and
// readers always receive a copy that cannot observe a later mutation.
type Tracker struct {
	mutex sync.RWMutex

	capacity int
	now      func() time.Time
	location *time.Location
	notifier notify.Notifier
	hooks    []registeredHook

	state ctdf.LocationState
}

// Config holds the tracker settings. Zero values fall back to the defaults.
type Config struct {
	Capacity int
	Now      func() time.Time
	// Timezone last_updated timestamps are formatted in
	Location *time.Location
	Notifier notify.Notifier
}

func New(cfg Config) *Tracker {
	t := &Tracker{
		capacity: DefaultCapacity,
		now:      time.Now,
		location: time.Local,
		notifier: cfg.Notifier,
		state: ctdf.LocationState{
			RouteHistory: []ctdf.RoutePoint{},
			Tracks:       map[string]ctdf.BusTrack{},
		},
	}

	if cfg.Capacity > 0 {
		t.capacity = cfg.Capacity
	}
	if cfg.Now != nil {
		t.now = cfg.Now
	}
	if cfg.Location != nil {
		t.location = cfg.Location
	}

	return t
}

func (t *Tracker) Capacity() int {
	return t.capacity
}

// OnUpdate registers a hook run after every accepted update
func (t *Tracker) OnUpdate(hook UpdateHook) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.hooks = append(t.hooks, registeredHook{run: hook, queue: &util.SerialQueue{}})
}

// Update records a new position report. Invalid coordinates are rejected
// with ErrInvalidCoordinate and leave the state untouched.
func (t *Tracker) Update(latitude float64, longitude float64, busID string) (ctdf.LocationUpdate, error) {
	if err := ValidateCoordinates(latitude, longitude); err != nil {
		return ctdf.LocationUpdate{}, err
	}

	now := t.now()
	point := ctdf.RoutePoint{
		Latitude:   latitude,
		Longitude:  longitude,
		RecordedAt: now,
	}
	lastUpdated := now.In(t.location).Format(ctdf.TimestampFormat)

	update := ctdf.LocationUpdate{
		BusID:       busID,
		Point:       point,
		Timestamp:   now,
		LastUpdated: lastUpdated,
	}

	t.mutex.Lock()

	t.state.Current = &ctdf.CurrentLocation{
		Latitude:  latitude,
		Longitude: longitude,
		Timestamp: now,
	}
	t.state.RouteHistory = appendBounded(t.state.RouteHistory, point, t.capacity)
	t.state.LastUpdated = &lastUpdated

	if trackKey := normaliseBusID(busID); trackKey != "" {
		track := t.state.Tracks[trackKey]
		track.BusID = trackKey
		track.Points = appendBounded(track.Points, point, t.capacity)
		track.LastUpdated = now
		t.state.Tracks[trackKey] = track
	}

	// Queued under the lock so hooks observe updates in the order applied
	for _, hook := range t.hooks {
		hook := hook
		hook.queue.Submit(func() { hook.run(update) })
	}

	t.mutex.Unlock()

	log.Debug().Str("bus", busID).Float64("latitude", latitude).Float64("longitude", longitude).Msg("Location updated")

	notify.Background(t.notifier, ctdf.Notification{
		Type:      ctdf.NotificationTypeLocationUpdated,
		Title:     "Bus location updated",
		Message:   fmt.Sprintf("Bus %s location updated: %v, %v at %s", busID, latitude, longitude, lastUpdated),
		BusID:     busID,
		Timestamp: now,
	})

	return update, nil
}

// Read returns a snapshot of the current state
func (t *Tracker) Read() ctdf.LocationState {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	snapshot := ctdf.LocationState{
		RouteHistory: clonePoints(t.state.RouteHistory),
		Tracks:       make(map[string]ctdf.BusTrack, len(t.state.Tracks)),
	}

	if t.state.Current != nil {
		current := *t.state.Current
		snapshot.Current = &current
	}
	if t.state.LastUpdated != nil {
		lastUpdated := *t.state.LastUpdated
		snapshot.LastUpdated = &lastUpdated
	}

	for key, track := range t.state.Tracks {
		snapshot.Tracks[key] = ctdf.BusTrack{
			BusID:       track.BusID,
			Points:      clonePoints(track.Points),
			LastUpdated: track.LastUpdated,
		}
	}

	return snapshot
}

// appendBounded evicts the oldest points before appending so the result
// never holds more than capacity points
func appendBounded(points []ctdf.RoutePoint, point ctdf.RoutePoint, capacity int) []ctdf.RoutePoint {
	if len(points) >= capacity {
		copy(points, points[len(points)-capacity+1:])
		points = points[:capacity-1]
	}

	return append(points, point)
}

func clonePoints(points []ctdf.RoutePoint) []ctdf.RoutePoint {
	cloned := make([]ctdf.RoutePoint, 0, len(points))
	if err := copier.Copy(&cloned, points); err != nil {
		log.Error().Err(err).Msg("Failed to copy route points")
		return append(cloned[:0], points...)
	}

	return cloned
}

func normaliseBusID(busID string) string {
	return strings.ToUpper(strings.TrimSpace(busID))
}
