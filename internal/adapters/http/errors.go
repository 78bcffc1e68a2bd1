package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, upstream_error, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
	Field     string `json:"field,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return writeAPIError(c, APIError{Status: status, Code: code, Message: message})
}

func writeAPIError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// writeDomainError maps the typed domain errors onto HTTP responses.
func writeDomainError(c *fiber.Ctx, err error) error {
	var (
		verr *domain.ValidationError
		nerr *domain.NotFoundError
		uerr *domain.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		return writeAPIError(c, APIError{
			Status:  fiber.StatusBadRequest,
			Code:    "bad_request",
			Message: verr.Error(),
			Field:   verr.Field,
		})
	case errors.As(err, &nerr):
		return errNotFound(c, nerr.Error())
	case errors.As(err, &uerr):
		return writeAPIError(c, APIError{
			Status:   fiber.StatusBadGateway,
			Code:     "upstream_error",
			Message:  "upstream provider failed",
			Provider: uerr.Provider,
			Detail:   uerr.Detail,
		})
	default:
		// DecodeError and anything unexpected.
		return errInternal(c, err.Error())
	}
}
