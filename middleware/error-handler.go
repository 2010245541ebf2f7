package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

const genericFailure = "Something went wrong. Please try again later."

// ErrorHandler renders errors returned from handlers. Client errors keep
// their message; anything else becomes a generic failure so internals never
// reach the response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := genericFailure

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
		}
	}

	if code >= fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.OriginalURL(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}
