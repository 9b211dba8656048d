package handlers

import (
	"errors"
	"log"

	"github.com/baxtbl4b/app-goroshina/catalog"
	"github.com/gofiber/fiber/v2"
)

func HandleProductStock(c *fiber.Ctx) error {
	p, err := loadProduct(c.Params("id"))
	if err != nil {
		return err
	}

	locations := aggregator.Aggregate(p.Product)
	return c.JSON(fiber.Map{
		"productId": p.ID,
		"locations": locations,
		"total":     locations.Total(),
	})
}

// HandleStockCap returns how many units of a product may go into the cart
// from one stock row
func HandleStockCap(c *fiber.Ctx) error {
	location := getQueryParam(c, "location")
	if location == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Location is required")
	}
	qty := c.QueryInt("qty", 1)

	p, err := loadProduct(c.Params("id"))
	if err != nil {
		return err
	}

	locations := aggregator.Aggregate(p.Product)
	return c.JSON(fiber.Map{
		"productId": p.ID,
		"location":  location,
		"requested": qty,
		"allowed":   locations.Cap(location, qty),
	})
}

func loadProduct(id string) (catalog.Product, error) {
	if id == "" {
		return catalog.Product{}, fiber.NewError(fiber.StatusBadRequest, "Product ID is required")
	}

	p, err := catalog.Get(id)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Product{}, fiber.NewError(fiber.StatusNotFound, "Product not found")
	}
	if err != nil {
		log.Printf("[stock] Failed to load product %s: %v", id, err)
		return catalog.Product{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to load product")
	}
	return p, nil
}
