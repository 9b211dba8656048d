package fitment

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value is a size field as sent by the vendor. Some trims encode sizes as
// JSON numbers and others as strings, so both decode to the trimmed text.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == 'n' {
		*v = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Value(n.String())
		return nil
	}

	// Objects, arrays and booleans carry no usable size
	*v = ""
	return nil
}

func (v Value) String() string {
	return string(v)
}

// Size is one tire size entry of a fitment record
type Size struct {
	Width  Value `json:"width"`
	Height Value `json:"height"`
	Diam   Value `json:"diam"`
}

func (s Size) complete() bool {
	return s.Width != "" && s.Height != "" && s.Diam != ""
}

func (s Size) option() TireSize {
	return TireSize{
		Width:    s.Width.String(),
		Height:   s.Height.String(),
		Diameter: s.Diam.String(),
	}
}

// PlusSize is an alternative, possibly staggered, front/rear size
type PlusSize struct {
	Front Size `json:"front"`
	Back  Size `json:"back"`
}

// Rim is a wheel spec reported for one diameter
type Rim struct {
	Diam  Value `json:"diam"`
	Width Value `json:"width"`
	ET    Value `json:"et"`
}

// Record describes the tire and wheel options of one vehicle trim
type Record struct {
	BoltPattern   Value      `json:"boltPattern"`
	CenterBore    Value      `json:"centerBore"`
	OEMTires      []Size     `json:"oemTires"`
	PlusSizeTires []PlusSize `json:"plusSizeTires"`
	OEMRims       []Rim      `json:"oemRims"`
}

// TireSize is a deduplicated uniform tire size
type TireSize struct {
	Width    string `json:"width"`
	Height   string `json:"height"`
	Diameter string `json:"diameter"`
}

// Key returns the width/height/diameter tuple used for deduplication
func (t TireSize) Key() string {
	return t.Width + "/" + t.Height + "/" + t.Diameter
}

// String renders the size in the usual 205/55 R16 notation
func (t TireSize) String() string {
	return t.Width + "/" + t.Height + " R" + t.Diameter
}

// StaggeredPair is a front/rear tire size combination
type StaggeredPair struct {
	Front TireSize `json:"front"`
	Rear  TireSize `json:"rear"`
}

func (p StaggeredPair) Key() string {
	return p.Front.Key() + "|" + p.Rear.Key()
}

func (p StaggeredPair) String() string {
	return p.Front.String() + " / " + p.Rear.String()
}

// WheelSpec is the rim width and offset for one diameter. Width and ET are
// blank when the vendor sent tires of this diameter but no rim data.
type WheelSpec struct {
	Diameter string `json:"diameter"`
	Width    string `json:"width"`
	ET       string `json:"et"`
}

func (w WheelSpec) Complete() bool {
	return w.Width != "" && w.ET != ""
}

// String renders the spec as 6.5Jx16 ET45, with ? for missing parts
func (w WheelSpec) String() string {
	width, et := w.Width, w.ET
	if width == "" {
		width = "?"
	}
	if et == "" {
		et = "?"
	}
	return width + "Jx" + w.Diameter + " ET" + et
}

// Result is everything the user can pick from for one brand/model/year
type Result struct {
	UniformSizes          []TireSize      `json:"uniformSizes"`
	StaggeredPairs        []StaggeredPair `json:"staggeredPairs"`
	WheelSpecs            []WheelSpec     `json:"wheelSpecs"`
	BoltPattern           string          `json:"boltPattern"`
	CenterBore            string          `json:"centerBore"`
	IsWheelDataIncomplete bool            `json:"isWheelDataIncomplete"`
}

// Empty reports whether the vehicle has no tire options at all
func (r Result) Empty() bool {
	return len(r.UniformSizes) == 0 && len(r.StaggeredPairs) == 0
}

// WheelSpec returns the wheel spec for a diameter
func (r Result) WheelSpec(diameter string) (WheelSpec, bool) {
	for _, w := range r.WheelSpecs {
		if w.Diameter == diameter {
			return w, true
		}
	}
	return WheelSpec{}, false
}

// HasSize reports whether size is one of the uniform options
func (r Result) HasSize(size TireSize) bool {
	for _, s := range r.UniformSizes {
		if s == size {
			return true
		}
	}
	return false
}

// HasPair reports whether pair is one of the staggered options
func (r Result) HasPair(pair StaggeredPair) bool {
	for _, p := range r.StaggeredPairs {
		if p == pair {
			return true
		}
	}
	return false
}
