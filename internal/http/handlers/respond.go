package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"craftyard/internal/domain"
	"craftyard/internal/services"
)

type errorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Available *int64 `json:"available,omitempty"`
}

func ok(c *fiber.Ctx, data fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(body)
}

// fail maps domain errors onto the response envelope one-to-one. Unknown
// errors become an opaque 500; internals never reach the client.
func fail(c *fiber.Ctx, err error) error {
	var (
		iq  *domain.InvalidQuantityError
		ins *domain.InsufficientInventoryError
		ce  *domain.CapacityError
	)
	switch {
	case errors.As(err, &iq):
		return failWith(c, fiber.StatusBadRequest, errorBody{Kind: "invalid_quantity", Message: iq.Error()})
	case errors.As(err, &ins):
		avail := ins.Available
		return failWith(c, fiber.StatusBadRequest, errorBody{Kind: "insufficient_inventory", Message: ins.Error(), Available: &avail})
	case errors.As(err, &ce):
		return failWith(c, fiber.StatusBadRequest, errorBody{Kind: "capacity_exceeded", Message: ce.Error()})
	case errors.Is(err, domain.ErrNotFoundOrForbidden):
		return failWith(c, fiber.StatusNotFound, errorBody{Kind: "not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrConflictRetryExhausted):
		return failWith(c, fiber.StatusServiceUnavailable, errorBody{Kind: "conflict_retry_exhausted", Message: err.Error()})
	case errors.Is(err, services.ErrBadCreds):
		return failWith(c, fiber.StatusUnauthorized, errorBody{Kind: "unauthorized", Message: err.Error()})
	default:
		return failWith(c, fiber.StatusInternalServerError, errorBody{Kind: "internal", Message: "something went wrong, please retry"})
	}
}

func failWith(c *fiber.Ctx, status int, body errorBody) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": body})
}

func badRequest(c *fiber.Ctx, kind, msg string) error {
	return failWith(c, fiber.StatusBadRequest, errorBody{Kind: kind, Message: msg})
}
