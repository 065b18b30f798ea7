package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Logger writes one access log line per request with the fields
// request_id, method, path, status and latency (milliseconds).
//
// Errors returned by the chain are passed to the app's ErrorHandler first so the
// logged status is the one the client receives; the cause goes to the "error" field.
func Logger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		entry := log.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		})
		if chainErr != nil {
			entry = entry.WithField("error", chainErr.Error())
		}
		if status >= fiber.StatusInternalServerError {
			entry.Error("http_request")
		} else {
			entry.Info("http_request")
		}
		return nil
	}
}
