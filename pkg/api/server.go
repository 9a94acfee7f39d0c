package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/travigo/bustracker/pkg/api/routes"
	"github.com/travigo/bustracker/pkg/app"
)

const StaticDirectory = "./static"

func NewServer(application *app.Application) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())
	webApp.Use(cors.New())

	webApp.Static("/static", StaticDirectory)

	group := webApp.Group("/api")

	group.Get("version", routes.APIVersion)

	routes.BusRouter(group.Group("/bus"), application)

	routes.LocationRouter(group.Group("/location"), application)
	// Older clients post to /buslocation
	group.Post("/buslocation", routes.UpdateLocation(application))

	routes.DashboardRouter(group.Group("/dashboard"), application)
	routes.OccupancyRouter(group.Group("/occupancy"), application)
	routes.GeolocationRouter(group.Group("/geolocation"), application)
	routes.GTFSRealtimeRouter(group.Group("/gtfs-rt"), application)

	return webApp
}
