// FILE: internal/pkg/serverutils/error_middleware.go
package serverutils

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts service errors into the JSON envelope.
// Services return plain errors; the status code is inferred from the
// message unless the error is already a *fiber.Error.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		code := statusFromMessage(err.Error())
		if code == fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
			return ctx.Status(code).JSON(ErrorResponse(code, "internal server error"))
		}
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

func statusFromMessage(msg string) int {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "not found"):
		return fiber.StatusNotFound
	case strings.Contains(lower, "access denied"), strings.Contains(lower, "forbidden"):
		return fiber.StatusForbidden
	case strings.Contains(lower, "invalid credentials"), strings.Contains(lower, "unauthorized"):
		return fiber.StatusUnauthorized
	case strings.Contains(lower, "already exists"), strings.Contains(lower, "conflict"):
		return fiber.StatusConflict
	case strings.Contains(lower, "invalid"), strings.Contains(lower, "required"),
		strings.Contains(lower, "does not match"), strings.Contains(lower, "exceeds"):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
