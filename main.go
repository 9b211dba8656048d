package main

import (
	"fmt"
	"log"
	"time"

	"github.com/baxtbl4b/app-goroshina/config"
	"github.com/baxtbl4b/app-goroshina/db"
	"github.com/baxtbl4b/app-goroshina/delivery"
	h "github.com/baxtbl4b/app-goroshina/handlers"
	"github.com/baxtbl4b/app-goroshina/stock"
	"github.com/baxtbl4b/app-goroshina/supplier"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.Load()

	// Initialize database
	if err := db.Init(config.DatabaseURL); err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer db.Close()

	// Stock aggregation rules and delivery classes
	rules, err := stock.LoadRules(config.RulesFile)
	if err != nil {
		log.Fatalf("Failed to load stock rules: %v", err)
	}
	table, err := delivery.LoadTable(config.DeliveryFile)
	if err != nil {
		log.Fatalf("Failed to load delivery table: %v", err)
	}
	log.Printf("[main] Loaded %d delivery entries", table.Len())

	// Vendor fitment API
	client, err := supplier.NewClient(config.VendorBaseURL, config.VendorAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize vendor client: %v", err)
	}

	if err := h.Init(client, stock.New(rules, table)); err != nil {
		log.Fatalf("Failed to initialize handlers: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: h.CustomErrorHandler,
		BodyLimit:    config.ServerBodyLimit,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Add rate limiter
	app.Use(limiter.New(limiter.Config{
		Max:        config.ServerRateLimitMax,
		Expiration: config.ServerRateLimitExp,
	}))

	// Add logger middleware
	app.Use(logger.New())

	// Health check
	app.Get("/health", h.HandleHealth)

	api := app.Group("/api")

	// Vehicle fitment
	api.Get("/fitment", h.HandleFitment)
	api.Get("/models", h.HandleModels)
	api.Get("/search", h.HandleSearch)

	// Product stock
	api.Get("/products/:id/stock", h.HandleProductStock)
	api.Get("/products/:id/stock/cap", h.HandleStockCap)

	// Garage
	garage := api.Group("/garage", h.GarageMiddleware)
	garage.Get("/", h.HandleGarageList)
	garage.Post("/", h.HandleGarageAdd)
	garage.Delete("/:id", h.HandleGarageDelete)

	// Admin API group
	adminAPI := api.Group("/admin", h.AdminRequired)
	adminAPI.Get("/cache", h.HandleCacheStats)
	adminAPI.Post("/cache/clear", h.HandleClearCache)

	fmt.Printf("Starting server on port %s...\n", config.ServerPort)
	log.Fatal(app.Listen(":" + config.ServerPort))
}
