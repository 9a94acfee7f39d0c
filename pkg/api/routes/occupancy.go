package routes

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/bustracker/pkg/app"
	"github.com/travigo/bustracker/pkg/occupancy"
)

func OccupancyRouter(router fiber.Router, application *app.Application) {
	router.Get("/", classifyOccupancy(application))
}

func classifyOccupancy(application *app.Application) fiber.Handler {
	return func(c *fiber.Ctx) error {
		occupantCount, err := strconv.Atoi(c.Query("occupant_count"))
		if err != nil || occupantCount < 0 {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "occupant_count must be a whole number of at least 0",
			})
		}

		totalSeats := application.Config.TotalSeats
		if totalSeatsQuery := c.Query("total_seats"); totalSeatsQuery != "" {
			totalSeats, err = strconv.Atoi(totalSeatsQuery)
			if err != nil || totalSeats <= 0 {
				c.SendStatus(fiber.StatusBadRequest)
				return c.JSON(fiber.Map{
					"error": "total_seats must be a whole number greater than 0",
				})
			}
		}

		result := occupancy.Classify(occupantCount, totalSeats)

		return c.JSON(fiber.Map{
			"empty_seats": result.EmptySeats,
			"status":      result.Status,
			"status_text": result.Status.Description(),
			"image_url":   result.ImageURL,
			"error":       result.Error,
		})
	}
}
