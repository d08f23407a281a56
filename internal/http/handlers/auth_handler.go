package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "craftyard/internal/log"
	"craftyard/internal/services"
	"craftyard/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "bad_request", "malformed body")
	}
	email, okEmail := validate.Email(req.Email)
	if !okEmail || req.Password == "" {
		applog.Security(c, "login.validation.fail", nil)
		return fail(c, services.ErrBadCreds)
	}

	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
	}
	a, err := h.Auth.Login(sid, email, req.Password)
	if err != nil {
		applog.Security(c, "login.fail", map[string]any{"email": email})
		return fail(c, err)
	}

	c.Cookie(&fiber.Cookie{Name: "sid", Value: sid, HTTPOnly: true, SameSite: "Lax"})
	applog.Audit(c, "login.ok", map[string]any{"artisan": a.ID})
	return ok(c, fiber.Map{"data": a})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		_ = h.Auth.Logout(sid)
	}
	c.ClearCookie("sid")
	return ok(c, nil)
}
