package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// CustomErrorHandler renders errors as JSON
func CustomErrorHandler(ctx *fiber.Ctx, err error) error {
	// Status code defaults to 500
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	// Retrieve the custom status code if it's a *fiber.Error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return ctx.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
