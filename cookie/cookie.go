package cookie

import (
	"github.com/baxtbl4b/app-goroshina/config"
	"github.com/gofiber/fiber/v2"
)

// GetGarageID returns the anonymous garage ID of the browser, if any
func GetGarageID(c *fiber.Ctx) string {
	return c.Cookies(config.GarageCookie)
}

func SetGarageID(c *fiber.Ctx, id string) {
	c.Cookie(&fiber.Cookie{
		Name:     config.GarageCookie,
		Value:    id,
		MaxAge:   int(config.GarageCookieTTL.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: "Lax",
	})
}
