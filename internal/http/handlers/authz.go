package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "craftyard/internal/log"
	"craftyard/internal/services"
)

// RequireArtisan resolves the session cookie to its owning artisan and stashes
// the id in Locals for handlers and the action log. Mutations never run without it.
func RequireArtisan(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return failWith(c, fiber.StatusUnauthorized, errorBody{Kind: "unauthorized", Message: "login required"})
		}
		a, err := auth.ResolveOwner(sid)
		if err != nil || a == nil {
			applog.Security(c, "access.denied.artisan", map[string]any{"sid": sid})
			return failWith(c, fiber.StatusUnauthorized, errorBody{Kind: "unauthorized", Message: "login required"})
		}
		c.Locals("artisanID", a.ID)
		c.Locals("artisan", a)
		return c.Next()
	}
}

func artisanID(c *fiber.Ctx) string {
	id, _ := c.Locals("artisanID").(string)
	return id
}
