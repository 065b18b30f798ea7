package middleware

import (
	"github.com/gofiber/fiber/v2"

	"archivesys/internal/i18n"
)

// Lang negotiates the display language from Accept-Language and stores it in the
// request context for label lookups.
func Lang(labels *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := labels.Match(c.Get(fiber.HeaderAcceptLanguage))
		c.SetUserContext(i18n.WithLang(c.UserContext(), lang))
		c.Set(fiber.HeaderContentLanguage, lang)
		return c.Next()
	}
}
