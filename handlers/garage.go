package handlers

import (
	"errors"
	"log"

	"github.com/baxtbl4b/app-goroshina/cookie"
	"github.com/baxtbl4b/app-goroshina/garage"
	"github.com/baxtbl4b/app-goroshina/local"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GarageMiddleware identifies the browser's garage by cookie, issuing a
// new ID on first visit
func GarageMiddleware(c *fiber.Ctx) error {
	owner := cookie.GetGarageID(c)
	if _, err := uuid.Parse(owner); err != nil {
		owner = uuid.NewString()
		cookie.SetGarageID(c, owner)
	}
	local.SetGarageOwner(c, owner)
	return c.Next()
}

type addVehicleRequest struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  string `json:"year"`
	garage.Choice
}

func HandleGarageList(c *fiber.Ctx) error {
	vehicles, err := garage.List(local.GetGarageOwner(c))
	if err != nil {
		log.Printf("[garage] Failed to list vehicles: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load garage")
	}
	return c.JSON(vehicles)
}

// HandleGarageAdd resolves the vehicle's fitment, merges the user's choice
// into a garage record and stores it
func HandleGarageAdd(c *fiber.Ctx) error {
	var req addVehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	brand, model, year := slug(req.Brand), slug(req.Model), req.Year
	if brand == "" || model == "" || year == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Brand, model and year are required")
	}

	res, err := resolveFitment(c.UserContext(), brand, model, year)
	if err != nil {
		log.Printf("[garage] Failed to resolve %s/%s/%s: %v", brand, model, year, err)
		return fiber.NewError(fiber.StatusBadGateway, "Fitment data is unavailable")
	}
	if res.Empty() {
		return fiber.NewError(fiber.StatusNotFound, "No fitment data for this vehicle")
	}

	v, err := garage.Merge(garage.Vehicle{Brand: brand, Model: model, Year: year}, res, req.Choice)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	v, err = garage.Save(local.GetGarageOwner(c), v)
	if err != nil {
		log.Printf("[garage] Failed to save vehicle: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save vehicle")
	}

	return c.Status(fiber.StatusCreated).JSON(v)
}

func HandleGarageDelete(c *fiber.Ctx) error {
	err := garage.Delete(local.GetGarageOwner(c), c.Params("id"))
	if errors.Is(err, garage.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Vehicle not found")
	}
	if err != nil {
		log.Printf("[garage] Failed to delete vehicle: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete vehicle")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
