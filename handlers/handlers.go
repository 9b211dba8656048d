package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/baxtbl4b/app-goroshina/cache"
	"github.com/baxtbl4b/app-goroshina/config"
	"github.com/baxtbl4b/app-goroshina/fitment"
	"github.com/baxtbl4b/app-goroshina/stock"
	"github.com/baxtbl4b/app-goroshina/supplier"
	"github.com/gofiber/fiber/v2"
)

// FitmentSource is the vendor API the handlers read vehicle data from
type FitmentSource interface {
	Fitment(ctx context.Context, brand, model, year string) ([]fitment.Record, error)
	Models(ctx context.Context, brand string) ([]supplier.Model, error)
	Search(ctx context.Context, query string) ([]supplier.Model, error)
}

// cacheOwner is implemented by sources that keep their own cache
type cacheOwner interface {
	CacheStats() []map[string]any
	ClearCache()
}

var (
	source     FitmentSource
	aggregator *stock.Aggregator
	results    *cache.Cache[fitment.Result]
)

// Init wires the handlers to their collaborators
func Init(src FitmentSource, agg *stock.Aggregator) error {
	var err error
	results, err = cache.New("Fitment Result Cache", config.ResultCacheTTL, func(r fitment.Result) int64 {
		return int64(128 + 48*(len(r.UniformSizes)+2*len(r.StaggeredPairs)+len(r.WheelSpecs)))
	})
	if err != nil {
		return fmt.Errorf("failed to initialize result cache: %w", err)
	}

	source = src
	aggregator = agg
	log.Printf("[handlers] Initialized")
	return nil
}

// resolveFitment returns the resolved options for a vehicle, cached per
// brand/model/year. Vendor failures are not cached.
func resolveFitment(ctx context.Context, brand, model, year string) (fitment.Result, error) {
	key := fmt.Sprintf("%s:%s:%s", brand, model, year)
	return results.GetOrLoad(key, func() (fitment.Result, error) {
		records, err := source.Fitment(ctx, brand, model, year)
		if err != nil {
			return fitment.Result{}, err
		}
		return fitment.Resolve(records), nil
	})
}

// getQueryParam gets a parameter from either query string or form data
func getQueryParam(c *fiber.Ctx, key string) string {
	if value := c.Query(key); value != "" {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(c.FormValue(key))
}

// slug normalizes a brand or model identifier
func slug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
