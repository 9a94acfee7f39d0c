package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const RequestIDHeader = "X-Request-ID"

// NewLogger logs every request with its outcome and tags the response with a
// request id, reusing the one supplied by the client if present
func NewLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)

		handlerErr := c.Next()

		code := c.Response().StatusCode()
		msg := "HTTP Request"
		if handlerErr != nil {
			msg = handlerErr.Error()

			var fiberErr *fiber.Error
			if errors.As(handlerErr, &fiberErr) {
				code = fiberErr.Code
			} else {
				code = fiber.StatusInternalServerError
			}
		}

		ipAddress := c.IP()
		if cloudflareConnectingIP := c.Get("CF-Connecting-IP"); cloudflareConnectingIP != "" {
			ipAddress = cloudflareConnectingIP
		}

		event := requestEvent(code, c.Path())
		event.
			Str("request_id", requestID).
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", ipAddress).
			Dur("latency", time.Since(startTime)).
			Str("user-agent", c.Get(fiber.HeaderUserAgent)).
			Msg(msg)

		return handlerErr
	}
}

func requestEvent(code int, path string) *zerolog.Event {
	switch {
	case code >= fiber.StatusInternalServerError:
		return log.Error()
	case code >= fiber.StatusBadRequest:
		return log.Warn()
	case strings.HasPrefix(path, "/static"):
		return log.Debug()
	default:
		return log.Info()
	}
}
