package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"archivesys/internal/auth"
	"archivesys/internal/service"
)

// PrincipalLocalKey is the Fiber locals key holding the authenticated auth.Principal.
const PrincipalLocalKey = "principal"

// Authenticator resolves a bearer token to the current caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
}

// Auth rejects requests without a valid bearer token with 401 and stores the
// principal in locals for the handlers.
func Auth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		p, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrInactiveUser) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
			}
			return err
		}
		c.Locals(PrincipalLocalKey, *p)
		return c.Next()
	}
}

// RequireStaff allows only staff principals through. It must run after Auth.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if !p.IsStaff {
			return fiber.NewError(fiber.StatusForbidden, "staff only")
		}
		return c.Next()
	}
}

// GetPrincipal returns the principal stored by Auth.
func GetPrincipal(c *fiber.Ctx) (auth.Principal, bool) {
	p, ok := c.Locals(PrincipalLocalKey).(auth.Principal)
	return p, ok
}
