package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"archivesys/internal/http/middleware"
	"archivesys/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

func writeValidation(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    "VALIDATION_FAILED",
			Message: "validation failed",
			Fields:  fields,
		},
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Handlers return service errors unchanged; they are mapped here. Anything unknown
// becomes INTERNAL_ERROR and the cause is only written to the access log.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return writeValidation(c, ve.Fields)
		case errors.Is(err, service.ErrIDRequired):
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		case errors.Is(err, service.ErrNotFound):
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
		case errors.Is(err, service.ErrNoFile):
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no file attached")
		case errors.Is(err, service.ErrForbidden):
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "not allowed")
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInactiveUser):
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		case errors.Is(err, service.ErrReaderNil):
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "cannot read uploaded file")
		case errors.Is(err, service.ErrReportGeneration):
			return writeError(c, fiber.StatusInternalServerError, "REPORT_GENERATION_FAILED", "report could not be generated")
		}

		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "not allowed")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "RATE_LIMITED", "too many requests")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, "SERVICE_UNAVAILABLE", "dependency unavailable")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
