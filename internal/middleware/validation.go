package middleware

import (
	"wiki-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalsSkip   = "validated_skip"
	LocalsLimit  = "validated_limit"
	LocalsQuizID = "validated_quiz_id"
)

// ValidationMiddleware parses and checks query and path parameters before the
// handler runs. Validated values are stored in fiber locals.
type ValidationMiddleware struct {
	validator *validation.Validator
}

func NewValidationMiddleware(v *validation.Validator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: v}
}

// ValidatePagination checks the skip and limit query parameters of GET /history.
func (vm *ValidationMiddleware) ValidatePagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip, limit, derr := vm.validator.ParsePagination(c.Query("skip"), c.Query("limit"))
		if derr != nil {
			return derr
		}
		c.Locals(LocalsSkip, skip)
		c.Locals(LocalsLimit, limit)
		return c.Next()
	}
}

// ValidateQuizID checks the :id path parameter.
func (vm *ValidationMiddleware) ValidateQuizID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, derr := vm.validator.ParseQuizID(c.Params("id"))
		if derr != nil {
			return derr
		}
		c.Locals(LocalsQuizID, id)
		return c.Next()
	}
}
