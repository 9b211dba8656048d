package stock

import (
	"github.com/baxtbl4b/app-goroshina/delivery"
)

// Bucket is the display name of an aggregated stock row
type Bucket string

const (
	BucketHighway           Bucket = "Highway Warehouse A"
	BucketAvenue            Bucket = "Avenue Warehouse B"
	BucketCityCenter        Bucket = "City Center"
	BucketOnOrder           Bucket = "On order"
	BucketOnOrderRemote     Bucket = "On order (remote origin)"
	BucketRemoteWarehouse   Bucket = "Remote Warehouse"
	BucketInStock           Bucket = "In stock"
	BucketCheckAvailability Bucket = "Check availability"
)

// Product is the stock part of a catalog record
type Product struct {
	// Storehouse maps warehouse display name to quantity
	Storehouse map[string]int `json:"storehouse"`
	// Stock is the flat stock count used when Storehouse is empty
	Stock    int    `json:"stock"`
	Provider string `json:"provider,omitempty"`
	// ProviderStock holds per-provider quantities, used to split the
	// other-cities total between on-order and a remote warehouse
	ProviderStock map[string]int `json:"providerStock,omitempty"`
}

// Location is one display-ready stock row
type Location struct {
	Location            string         `json:"location"`
	Stock               int            `json:"stock"`
	Provider            string         `json:"provider,omitempty"`
	FromRemoteWarehouse bool           `json:"fromRemoteWarehouse"`
	RemoteOrigin        bool           `json:"remoteOrigin,omitempty"`
	Delivery            delivery.Class `json:"delivery"`
}

type Locations []Location

// Total is the summed stock of all rows
func (ls Locations) Total() int {
	total := 0
	for _, l := range ls {
		total += l.Stock
	}
	return total
}

// Find returns the row for a location
func (ls Locations) Find(location string) (Location, bool) {
	for _, l := range ls {
		if l.Location == location {
			return l, true
		}
	}
	return Location{}, false
}

// Cap limits a requested cart quantity to the row's stock
func (ls Locations) Cap(location string, requested int) int {
	l, ok := ls.Find(location)
	if !ok || requested <= 0 {
		return 0
	}
	return min(requested, l.Stock)
}
