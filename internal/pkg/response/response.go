package response

import "github.com/gofiber/fiber/v2"

// Response is the envelope every endpoint returns. Success payloads carry
// Message and Data; failures carry Error only, so internal details never
// ride along in the data field.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Success sends a 200 with an optional message and payload
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return ok(c, fiber.StatusOK, message, data)
}

// Created sends a 201 for newly registered resources
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return ok(c, fiber.StatusCreated, message, data)
}

// Error sends a failure envelope with the given status
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 for malformed or invalid input
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 when no valid identity is established
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 for role and ownership rule violations
func Forbidden(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "You don't have permission to perform this action"
	}
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 for lookups that matched nothing
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 for unique-identifier collisions
func Conflict(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource already exists"
	}
	return Error(c, fiber.StatusConflict, message)
}

// InternalServerError sends a 500; the message should be a generic summary,
// never the underlying error text
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}
