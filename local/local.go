package local

import "github.com/gofiber/fiber/v2"

func GetGarageOwner(c *fiber.Ctx) string {
	owner, _ := c.Locals("garageOwner").(string)
	return owner
}

func SetGarageOwner(c *fiber.Ctx, owner string) {
	c.Locals("garageOwner", owner)
}
