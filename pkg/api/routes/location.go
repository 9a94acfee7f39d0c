package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/bustracker/pkg/app"
	"github.com/travigo/bustracker/pkg/tracker"
)

type locationRequest struct {
	Latitude  interface{} `json:"latitude"`
	Longitude interface{} `json:"longitude"`
	BusNumber string      `json:"bus_number"`
}

func LocationRouter(router fiber.Router, application *app.Application) {
	router.Get("/", getLocation(application))
	router.Post("/", UpdateLocation(application))
}

func invalidLocation(c *fiber.Ctx) error {
	c.SendStatus(fiber.StatusBadRequest)
	return c.JSON(fiber.Map{
		"error": "Invalid location data",
	})
}

func UpdateLocation(application *app.Application) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var request locationRequest
		if err := c.BodyParser(&request); err != nil {
			return invalidLocation(c)
		}

		latitude, err := tracker.ParseCoordinate(request.Latitude)
		if err != nil {
			return invalidLocation(c)
		}
		longitude, err := tracker.ParseCoordinate(request.Longitude)
		if err != nil {
			return invalidLocation(c)
		}

		update, err := application.Tracker.Update(latitude, longitude, request.BusNumber)
		if err != nil {
			return invalidLocation(c)
		}

		return c.JSON(fiber.Map{
			"message":    "Location updated",
			"bus_number": request.BusNumber,
			"timestamp":  update.LastUpdated,
		})
	}
}

func getLocation(application *app.Application) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(application.Tracker.Read())
	}
}
