package stock

import (
	"fmt"
	"os"
	"strings"

	"github.com/baxtbl4b/app-goroshina/delivery"
	"gopkg.in/yaml.v3"
)

// Tag names a rule so tests and logs can refer to it
type Tag string

const (
	TagHighway          Tag = "location.highway"
	TagAvenue           Tag = "location.avenue"
	TagCityCenter       Tag = "location.city-center"
	TagLocalPickup      Tag = "vendor.local-pickup"
	TagSecondarySplit   Tag = "vendor.secondary-split"
	TagRemoteOrigin     Tag = "location.remote-origin"
	TagOtherCities      Tag = "location.other-cities"
	TagEmptyStorehouse  Tag = "fallback.empty-storehouse"
	TagNothingAvailable Tag = "fallback.nothing-available"
)

// Rules holds the tokens and vendor identifiers the aggregation keys on.
// Matching is case-insensitive.
type Rules struct {
	HighwayToken        string         `yaml:"highway_token"`
	AvenueToken         string         `yaml:"avenue_token"`
	PrimaryCity         string         `yaml:"primary_city"`
	RegionToken         string         `yaml:"region_token"`
	RemoteOriginToken   string         `yaml:"remote_origin_token"`
	LocalPickupProvider string         `yaml:"local_pickup_provider"`
	SecondaryProvider   string         `yaml:"secondary_provider"`
	RemoteOriginClass   delivery.Class `yaml:"remote_origin_class"`
}

func DefaultRules() Rules {
	return Rules{
		HighwayToken:        "highway",
		AvenueToken:         "avenue",
		PrimaryCity:         "springfield",
		RegionToken:         "county",
		RemoteOriginToken:   "import",
		LocalPickupProvider: "localvendor",
		SecondaryProvider:   "remotevendor",
		RemoteOriginClass: delivery.Class{
			Text:     "7-10 days",
			Severity: delivery.SeverityWarning,
		},
	}
}

// LoadRules reads rules from a YAML file on top of DefaultRules. A missing
// file yields the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return Rules{}, fmt.Errorf("failed to read stock rules: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse stock rules: %w", err)
	}

	return rules, nil
}

// Matcher assigns a normalized location name to a bucket
type Matcher struct {
	Tag    Tag
	Bucket Bucket
	Match  func(name string) bool
}

// VendorRule alters aggregation for the providers it applies to
type VendorRule struct {
	Tag     Tag
	Applies func(provider string) bool
	// Suppress drops the stock of these buckets entirely
	Suppress []Bucket
	// EmptyLabel replaces the Check availability label when the
	// storehouse is empty
	EmptyLabel Bucket
}

func (r VendorRule) suppresses(b Bucket) bool {
	for _, s := range r.Suppress {
		if s == b {
			return true
		}
	}
	return false
}

// SplitRule moves part of the other-cities total to a remote warehouse
// row, using the named provider's own quantity
type SplitRule struct {
	Tag      Tag
	Provider string
}

func (r SplitRule) quantity(providerStock map[string]int) int {
	if r.Provider == "" {
		return 0
	}
	for name, qty := range providerStock {
		if strings.EqualFold(strings.TrimSpace(name), r.Provider) {
			return max(qty, 0)
		}
	}
	return 0
}

func containsToken(token string) func(string) bool {
	token = normalize(token)
	return func(name string) bool {
		return token != "" && strings.Contains(name, token)
	}
}

func isProvider(id string) func(string) bool {
	id = normalize(id)
	return func(provider string) bool {
		return id != "" && normalize(provider) == id
	}
}

func (r Rules) matchers() []Matcher {
	city := normalize(r.PrimaryCity)
	region := normalize(r.RegionToken)

	return []Matcher{
		{Tag: TagHighway, Bucket: BucketHighway, Match: containsToken(r.HighwayToken)},
		{Tag: TagAvenue, Bucket: BucketAvenue, Match: containsToken(r.AvenueToken)},
		{Tag: TagCityCenter, Bucket: BucketCityCenter, Match: func(name string) bool {
			if city == "" {
				return false
			}
			if name == city {
				return true
			}
			return strings.Contains(name, city) && (region == "" || !strings.Contains(name, region))
		}},
	}
}

func (r Rules) vendorRules() []VendorRule {
	// The local pickup vendor's city-center stock is already counted in
	// its highway and avenue warehouses
	return []VendorRule{{
		Tag:        TagLocalPickup,
		Applies:    isProvider(r.LocalPickupProvider),
		Suppress:   []Bucket{BucketCityCenter},
		EmptyLabel: BucketInStock,
	}}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
