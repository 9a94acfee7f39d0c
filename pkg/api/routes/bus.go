package routes

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/app"
	"github.com/travigo/bustracker/pkg/busfinder"
)

func BusRouter(router fiber.Router, application *app.Application) {
	router.Get("/", searchBuses(application))
	router.Get("/:bus_number", getBus(application))
}

func searchBuses(application *app.Application) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Query values point into the request buffer, which is reused after
		// the handler returns
		from := utils.CopyString(c.Query("from"))
		to := utils.CopyString(c.Query("to"))

		matches, err := application.Finder.Search(c.UserContext(), from, to)

		if errors.Is(err, busfinder.ErrMissingParameters) {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Missing 'from' or 'to' location parameters",
			})
		} else if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(matches)
	}
}

func getBus(application *app.Application) fiber.Handler {
	return func(c *fiber.Ctx) error {
		route := application.Routes.Get(c.Params("bus_number"))

		if route == nil {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Bus not found",
			})
		}

		routeReduced, err := sheriff.Marshal(&sheriff.Options{
			Groups: []string{"basic", "detailed"},
		}, route)
		if err != nil {
			log.Error().Err(err).Str("route", route.PrimaryIdentifier).Msg("Sheriff could not reduce route")

			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sheriff could not reduce Route",
			})
		}

		response, ok := routeReduced.(map[string]interface{})
		if !ok {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sheriff could not reduce Route",
			})
		}

		location := application.Tracker.Read()
		response["current_location"] = location.Current
		response["last_updated"] = location.LastUpdated

		if track, exists := location.Tracks[strings.ToUpper(route.PrimaryIdentifier)]; exists && len(track.Points) > 0 {
			response["route_history"] = track.Points
		} else {
			response["route_history"] = []interface{}{}
		}

		return c.JSON(response)
	}
}
