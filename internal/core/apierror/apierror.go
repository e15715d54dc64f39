// Package apierror holds the error body every HTTP handler returns.
package apierror

import "github.com/gofiber/fiber/v2"

// UnknownRayID is reported when the request id middleware did not run.
const UnknownRayID = "unknown"

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id"`
}

// RayID returns the request id set by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok || id == "" {
		return UnknownRayID
	}
	return id
}

// Send writes an ErrorResponse with the given status.
func Send(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Message: message,
		RayID:   RayID(c),
	})
}
