package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/bustracker/pkg/app"
)

func DashboardRouter(router fiber.Router, application *app.Application) {
	router.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(application.Dashboard())
	})
}
