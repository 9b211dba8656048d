package garage

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/baxtbl4b/app-goroshina/fitment"
)

var (
	ErrNotFound    = errors.New("vehicle not found")
	ErrNotOffered  = errors.New("size is not offered for this vehicle")
	ErrNoSelection = errors.New("brand, model and year are required")
)

type Season string

const (
	SeasonSummer    Season = "summer"
	SeasonWinter    Season = "winter"
	SeasonAllSeason Season = "all-season"
)

func (s Season) Valid() bool {
	switch s {
	case SeasonSummer, SeasonWinter, SeasonAllSeason:
		return true
	}
	return false
}

// Tires is the size chosen for one season. Rear equals Front unless the
// choice is a staggered pair.
type Tires struct {
	Front     fitment.TireSize `json:"front"`
	Rear      fitment.TireSize `json:"rear"`
	Staggered bool             `json:"staggered"`
}

// Wheel is the chosen wheel spec with the vehicle's PCD and center bore
type Wheel struct {
	Diameter string `json:"diameter"`
	Width    string `json:"width"`
	ET       string `json:"et"`
	PCD      string `json:"pcd"`
	DIA      string `json:"dia"`
}

// Vehicle is one entry of a user's garage
type Vehicle struct {
	ID        string           `json:"id"`
	Brand     string           `json:"brand"`
	Model     string           `json:"model"`
	Year      string           `json:"year"`
	Tires     map[Season]Tires `json:"tires"`
	Wheel     Wheel            `json:"wheel"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Choice is what the user picked from a fitment result. Exactly one of
// Size and Pair is set. Diameter defaults to the front tire's.
type Choice struct {
	Season   Season                 `json:"season"`
	Size     *fitment.TireSize      `json:"size,omitempty"`
	Pair     *fitment.StaggeredPair `json:"pair,omitempty"`
	Diameter string                 `json:"diameter,omitempty"`
}

// Merge applies a choice made from res to v and returns the updated copy.
// The chosen size must be one res offers.
func Merge(v Vehicle, res fitment.Result, c Choice) (Vehicle, error) {
	if v.Brand == "" || v.Model == "" || v.Year == "" {
		return Vehicle{}, ErrNoSelection
	}
	if !c.Season.Valid() {
		return Vehicle{}, fmt.Errorf("unknown season %q", c.Season)
	}

	var tires Tires
	switch {
	case c.Size != nil && c.Pair == nil:
		if !res.HasSize(*c.Size) {
			return Vehicle{}, fmt.Errorf("%s: %w", c.Size, ErrNotOffered)
		}
		tires = Tires{Front: *c.Size, Rear: *c.Size}
	case c.Pair != nil && c.Size == nil:
		if !res.HasPair(*c.Pair) {
			return Vehicle{}, fmt.Errorf("%s: %w", c.Pair, ErrNotOffered)
		}
		tires = Tires{Front: c.Pair.Front, Rear: c.Pair.Rear, Staggered: c.Pair.Front != c.Pair.Rear}
	default:
		return Vehicle{}, errors.New("choose exactly one of size or pair")
	}

	diameter := c.Diameter
	if diameter == "" {
		diameter = tires.Front.Diameter
	}
	spec, ok := res.WheelSpec(diameter)
	if !ok {
		return Vehicle{}, fmt.Errorf("wheel diameter %s: %w", diameter, ErrNotOffered)
	}

	out := v
	out.Tires = maps.Clone(v.Tires)
	if out.Tires == nil {
		out.Tires = make(map[Season]Tires)
	}
	out.Tires[c.Season] = tires
	out.Wheel = Wheel{
		Diameter: spec.Diameter,
		Width:    spec.Width,
		ET:       spec.ET,
		PCD:      res.BoltPattern,
		DIA:      res.CenterBore,
	}
	return out, nil
}
