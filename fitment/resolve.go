package fitment

import (
	"sort"
	"strconv"
	"strings"
)

// Resolve derives the deduplicated tire sizes, staggered pairs and wheel
// specs for one brand/model/year from the vendor's per-trim records.
// Partial entries are skipped. An empty input yields empty, non-nil lists.
func Resolve(records []Record) Result {
	res := Result{
		UniformSizes:   []TireSize{},
		StaggeredPairs: []StaggeredPair{},
		WheelSpecs:     []WheelSpec{},
	}
	if len(records) == 0 {
		return res
	}

	uniform := make(map[string]TireSize)
	staggered := make(map[string]StaggeredPair)
	diameters := make(map[string]struct{})

	for _, rec := range records {
		// Bolt pattern and center bore are per model; first non-empty wins
		if res.BoltPattern == "" {
			res.BoltPattern = rec.BoltPattern.String()
		}
		if res.CenterBore == "" {
			res.CenterBore = rec.CenterBore.String()
		}

		for _, tire := range rec.OEMTires {
			if !tire.complete() {
				continue
			}
			size := tire.option()
			uniform[size.Key()] = size
			diameters[size.Diameter] = struct{}{}
		}

		for _, plus := range rec.PlusSizeTires {
			if !plus.Front.complete() || !plus.Back.complete() {
				continue
			}
			pair := StaggeredPair{Front: plus.Front.option(), Rear: plus.Back.option()}
			staggered[pair.Key()] = pair
			diameters[pair.Front.Diameter] = struct{}{}
			diameters[pair.Rear.Diameter] = struct{}{}
		}
	}

	// Rim specs are per model, so the first trim is enough
	rims := rimsByDiameter(records[0].OEMRims)

	for diameter := range diameters {
		spec := WheelSpec{Diameter: diameter}
		if rim, ok := rims[diameter]; ok {
			spec.Width = rim.Width.String()
			spec.ET = rim.ET.String()
		}
		if !spec.Complete() {
			res.IsWheelDataIncomplete = true
		}
		res.WheelSpecs = append(res.WheelSpecs, spec)
	}
	sort.Slice(res.WheelSpecs, func(i, j int) bool {
		return lessNumeric(res.WheelSpecs[i].Diameter, res.WheelSpecs[j].Diameter)
	})

	for _, size := range uniform {
		res.UniformSizes = append(res.UniformSizes, size)
	}
	sort.Slice(res.UniformSizes, func(i, j int) bool {
		return lessSize(res.UniformSizes[i], res.UniformSizes[j])
	})

	for _, pair := range staggered {
		res.StaggeredPairs = append(res.StaggeredPairs, pair)
	}
	sort.Slice(res.StaggeredPairs, func(i, j int) bool {
		a, b := res.StaggeredPairs[i], res.StaggeredPairs[j]
		if a.Front != b.Front {
			return lessSize(a.Front, b.Front)
		}
		return lessSize(a.Rear, b.Rear)
	})

	return res
}

func rimsByDiameter(rims []Rim) map[string]Rim {
	byDiameter := make(map[string]Rim, len(rims))
	for _, rim := range rims {
		if rim.Diam == "" {
			continue
		}
		if _, seen := byDiameter[rim.Diam.String()]; seen {
			continue
		}
		byDiameter[rim.Diam.String()] = rim
	}
	return byDiameter
}

func lessSize(a, b TireSize) bool {
	if a.Diameter != b.Diameter {
		return lessNumeric(a.Diameter, b.Diameter)
	}
	if a.Width != b.Width {
		return lessNumeric(a.Width, b.Width)
	}
	return lessNumeric(a.Height, b.Height)
}

// lessNumeric orders numerically where both sides parse ("9" < "10"),
// otherwise falls back to plain string order with numbers first.
func lessNumeric(a, b string) bool {
	x, errA := parseDimension(a)
	y, errB := parseDimension(b)
	switch {
	case errA == nil && errB == nil:
		if x != y {
			return x < y
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func parseDimension(s string) (float64, error) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "R")
	s = strings.Replace(s, ",", ".", 1)
	return strconv.ParseFloat(s, 64)
}
