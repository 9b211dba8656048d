package handlers

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/baxtbl4b/app-goroshina/config"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired lets a request through only if it carries the admin
// bearer token
func AdminRequired(c *fiber.Ctx) error {
	if config.AdminToken == "" {
		return fiber.NewError(fiber.StatusForbidden, "Admin access is disabled")
	}

	token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(config.AdminToken)) != 1 {
		return fiber.NewError(fiber.StatusForbidden, "Admin access required")
	}
	return c.Next()
}

// HandleCacheStats returns statistics of the fitment caches
func HandleCacheStats(c *fiber.Ctx) error {
	stats := []map[string]any{results.Stats()}
	if owner, ok := source.(cacheOwner); ok {
		stats = append(stats, owner.CacheStats()...)
	}
	return c.JSON(stats)
}

func HandleClearCache(c *fiber.Ctx) error {
	results.Clear()
	if owner, ok := source.(cacheOwner); ok {
		owner.ClearCache()
	}
	log.Printf("[handlers] Fitment caches cleared")
	return HandleCacheStats(c)
}
