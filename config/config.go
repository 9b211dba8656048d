package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	// SearchDebounce is the pause after the last keystroke before a
	// vehicle model search is sent to the vendor.
	SearchDebounce = 300 * time.Millisecond

	// SearchMinLength is the shortest query worth sending
	SearchMinLength = 2

	VendorTimeout  = 10 * time.Second
	VendorCacheTTL = 6 * time.Hour
	ResultCacheTTL = 1 * time.Hour

	ServerRateLimitMax = 120
	ServerRateLimitExp = 1 * time.Minute
	ServerBodyLimit    = 1 << 20

	GarageCookie    = "garage_id"
	GarageCookieTTL = 365 * 24 * time.Hour
)

var (
	ServerPort    string
	DatabaseURL   string
	VendorBaseURL string
	VendorAPIKey  string
	RulesFile     string
	DeliveryFile  string

	// AdminToken guards the cache admin routes. Empty disables them.
	AdminToken string
)

// Load reads .env if present and then the environment
func Load() {
	_ = godotenv.Load()

	ServerPort = getEnv("SERVER_PORT", "8080")
	DatabaseURL = getEnv("DATABASE_URL", "shop.db")
	VendorBaseURL = getEnv("VENDOR_BASE_URL", "https://api.wheel-size.com/v2")
	VendorAPIKey = getEnv("VENDOR_API_KEY", "")
	RulesFile = getEnv("RULES_FILE", "stock-rules.yaml")
	DeliveryFile = getEnv("DELIVERY_FILE", "delivery.yaml")
	AdminToken = getEnv("ADMIN_TOKEN", "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
