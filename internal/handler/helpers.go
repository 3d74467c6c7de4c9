package handler

import (
	"strconv"

	"go-jewelry-pos/internal/apperr"
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// getOperator pulls the identity set by the auth middleware for ledger
// stamping.
func getOperator(c *fiber.Ctx) service.Operator {
	op := service.Operator{ID: "system", Name: "Unknown"}
	if id, ok := c.Locals("user_id").(string); ok {
		op.ID = id
	}
	if name, ok := c.Locals("user_name").(string); ok {
		op.Name = name
	}
	return op
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// errorJSON surfaces the error verbatim; upstream failures are not rewrapped.
func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
