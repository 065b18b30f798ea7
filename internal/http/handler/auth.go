package handler

import (
	"github.com/gofiber/fiber/v2"

	"archivesys/internal/http/form"
	"archivesys/internal/service"
)

// Login exchanges credentials for a bearer token.
//
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} errorPayload
// @Failure 429 {object} errorPayload
// @Router /auth/login [post]
func Login(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f form.Login
		if err := bind(c, &f); err != nil {
			return err
		}
		if err := form.Validate(f); err != nil {
			return err
		}
		res, err := svc.Login(c.UserContext(), f.Username, f.Password)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// Me returns the authenticated user with the profile.
//
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} model.User
// @Security BearerAuth
// @Router /auth/me [get]
func Me(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		u, err := svc.Get(c.UserContext(), p.UserID)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}
