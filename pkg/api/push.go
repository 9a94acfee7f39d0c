package api

import (
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/travigo/bustracker/pkg/tracker"
)

const (
	pushNamespace       = "/"
	LocationUpdateEvent = "location_update"
)

type LocationUpdatePayload struct {
	BusNumber string      `json:"bus_number"`
	Location  interface{} `json:"location"`
	Timestamp *string     `json:"timestamp"`
}

// SnapshotPayload is sent to every newly connected client
func SnapshotPayload(state ctdf.LocationState) LocationUpdatePayload {
	return LocationUpdatePayload{
		BusNumber: "ALL",
		Location:  state.Current,
		Timestamp: state.LastUpdated,
	}
}

func UpdatePayload(update ctdf.LocationUpdate) LocationUpdatePayload {
	timestamp := update.LastUpdated

	return LocationUpdatePayload{
		BusNumber: update.BusID,
		Location: ctdf.CurrentLocation{
			Latitude:  update.Point.Latitude,
			Longitude: update.Point.Longitude,
			Timestamp: update.Timestamp,
		},
		Timestamp: &timestamp,
	}
}

// PushServer delivers location updates to Socket.IO clients
type PushServer struct {
	server *socketio.Server
}

func NewPushServer(locationTracker *tracker.Tracker) *PushServer {
	server := socketio.NewServer(nil)

	server.OnConnect(pushNamespace, func(s socketio.Conn) error {
		log.Debug().Str("id", s.ID()).Str("remote", s.RemoteAddr().String()).Msg("Push client connected")

		s.Emit(LocationUpdateEvent, SnapshotPayload(locationTracker.Read()))

		return nil
	})

	server.OnError(pushNamespace, func(s socketio.Conn, err error) {
		log.Warn().Err(err).Msg("Push client error")
	})

	server.OnDisconnect(pushNamespace, func(s socketio.Conn, reason string) {
		log.Debug().Str("id", s.ID()).Str("reason", reason).Msg("Push client disconnected")
	})

	pushServer := &PushServer{server: server}
	locationTracker.OnUpdate(pushServer.Broadcast)

	return pushServer
}

func (p *PushServer) Broadcast(update ctdf.LocationUpdate) {
	p.server.BroadcastToNamespace(pushNamespace, LocationUpdateEvent, UpdatePayload(update))
}

// Listen serves Socket.IO clients until the server is closed
func (p *PushServer) Listen(listen string) error {
	go func() {
		if err := p.server.Serve(); err != nil {
			log.Error().Err(err).Msg("Socket.IO server stopped")
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", p.server)

	log.Info().Str("listen", listen).Msg("Starting push server")

	return http.ListenAndServe(listen, mux)
}

func (p *PushServer) Close() error {
	return p.server.Close()
}
