package routes

import (
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/bustracker/pkg/app"
	"github.com/travigo/bustracker/pkg/ctdf"
	"golang.org/x/exp/slices"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

func GTFSRealtimeRouter(router fiber.Router, application *app.Application) {
	router.Get("/vehicle_positions", getVehiclePositions(application))
}

// VehiclePositionsFeed builds a full GTFS-Realtime dataset with the most
// recent position of every tracked bus
func VehiclePositionsFeed(location ctdf.LocationState, now time.Time) *gtfs.FeedMessage {
	busIDs := make([]string, 0, len(location.Tracks))
	for busID := range location.Tracks {
		busIDs = append(busIDs, busID)
	}
	slices.Sort(busIDs)

	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
	}

	for _, busID := range busIDs {
		track := location.Tracks[busID]
		if len(track.Points) == 0 {
			continue
		}
		latest := track.Points[len(track.Points)-1]

		feed.Entity = append(feed.Entity, &gtfs.FeedEntity{
			Id: proto.String(busID),
			Vehicle: &gtfs.VehiclePosition{
				Trip: &gtfs.TripDescriptor{
					RouteId: proto.String(busID),
				},
				Vehicle: &gtfs.VehicleDescriptor{
					Id:    proto.String(busID),
					Label: proto.String(busID),
				},
				Position: &gtfs.Position{
					Latitude:  proto.Float32(float32(latest.Latitude)),
					Longitude: proto.Float32(float32(latest.Longitude)),
				},
				Timestamp: proto.Uint64(uint64(latest.RecordedAt.Unix())),
			},
		})
	}

	return feed
}

func getVehiclePositions(application *app.Application) fiber.Handler {
	return func(c *fiber.Ctx) error {
		feed := VehiclePositionsFeed(application.Tracker.Read(), application.Now())

		if c.Query("format") == "json" {
			feedJSON, err := protojson.Marshal(feed)
			if err != nil {
				c.SendStatus(fiber.StatusInternalServerError)
				return c.JSON(fiber.Map{
					"error": "Could not encode feed",
				})
			}

			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(feedJSON)
		}

		feedBytes, err := proto.Marshal(feed)
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Could not encode feed",
			})
		}

		c.Set(fiber.HeaderContentType, "application/x-protobuf")
		return c.Send(feedBytes)
	}
}
