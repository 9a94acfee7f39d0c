package routes

import "github.com/gofiber/fiber/v2"

const (
	ServiceName = "bustracker"
	APIRevision = "v1.0"
)

func APIVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": ServiceName,
		"version": APIRevision,
	})
}
