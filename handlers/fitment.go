package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// HandleFitment returns the tire and wheel options for a vehicle. All of
// brand, model and year must be given.
func HandleFitment(c *fiber.Ctx) error {
	brand := slug(getQueryParam(c, "brand"))
	model := slug(getQueryParam(c, "model"))
	year := getQueryParam(c, "year")
	if brand == "" || model == "" || year == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Brand, model and year are required")
	}

	res, err := resolveFitment(c.UserContext(), brand, model, year)
	if err != nil {
		log.Printf("[fitment] Failed to resolve %s/%s/%s: %v", brand, model, year, err)
		return fiber.NewError(fiber.StatusBadGateway, "Fitment data is unavailable")
	}

	return c.JSON(res)
}

// HandleModels lists the models of a brand
func HandleModels(c *fiber.Ctx) error {
	brand := slug(getQueryParam(c, "brand"))
	if brand == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Brand is required")
	}

	models, err := source.Models(c.UserContext(), brand)
	if err != nil {
		log.Printf("[fitment] Failed to list models of %s: %v", brand, err)
		return fiber.NewError(fiber.StatusBadGateway, "Model list is unavailable")
	}

	return c.JSON(models)
}

// HandleSearch runs a free-text model search. Debouncing is up to the
// client; queries shorter than the minimum return an empty list.
func HandleSearch(c *fiber.Ctx) error {
	models, err := source.Search(c.UserContext(), getQueryParam(c, "q"))
	if err != nil {
		log.Printf("[fitment] Search failed: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, "Search is unavailable")
	}

	return c.JSON(models)
}
