package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/bustracker/pkg/app"
)

func GeolocationRouter(router fiber.Router, application *app.Application) {
	router.Get("/", func(c *fiber.Ctx) error {
		fix, err := application.Resolver.Resolve(c.UserContext())
		if err != nil {
			c.SendStatus(fiber.StatusServiceUnavailable)
			return c.JSON(fiber.Map{
				"error": "Geolocation unavailable",
			})
		}

		return c.JSON(fix)
	})
}
