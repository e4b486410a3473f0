// FILE: internal/pkg/serverutils/validator.go
package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens failures into a
// single 400 so the error middleware can pass it through as-is.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var problems []string
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			problems = append(problems, fmt.Sprintf("%s exceeds maximum of %s", fe.Field(), fe.Param()))
		case "min":
			problems = append(problems, fmt.Sprintf("%s is below minimum of %s", fe.Field(), fe.Param()))
		case "email":
			problems = append(problems, fmt.Sprintf("%s must be a valid email", fe.Field()))
		default:
			problems = append(problems, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}

	return fiber.NewError(fiber.StatusBadRequest, strings.Join(problems, "; "))
}
