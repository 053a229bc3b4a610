package handlers

import (
	"errors"
	"time"

	"github.com/feedlane/feedlane/internal/types"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler translates service errors into the JSON error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var custom *types.CustomError
	if errors.As(err, &custom) {
		code = custom.Code
		message = custom.Message
		errorType = custom.Type
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
