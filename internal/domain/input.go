package domain

import (
	"encoding/json"
	"math"
)

// RainfallUnit tags how a raw rainfall figure should be interpreted.
type RainfallUnit string

const (
	RainfallUnspecified RainfallUnit = ""
	RainfallDaily       RainfallUnit = "daily"
	RainfallAnnual      RainfallUnit = "annual"
)

// RawRainfall is a rainfall figure as supplied by the user or the archive.
// A nil Value means no rainfall data was available.
type RawRainfall struct {
	Value *float64     `json:"value"`
	Unit  RainfallUnit `json:"unit,omitempty"`
}

// Rainfall builds a RawRainfall with a value and an explicit unit.
func Rainfall(value float64, unit RainfallUnit) RawRainfall {
	return RawRainfall{Value: &value, Unit: unit}
}

// Depth is a groundwater depth in metres below ground level that may be unknown.
// The zero value is unknown.
type Depth struct {
	meters float64
	known  bool
}

// KnownDepth returns a known depth. Non-finite values yield an unknown depth.
func KnownDepth(m float64) Depth {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return Depth{}
	}
	return Depth{meters: m, known: true}
}

// UnknownDepth returns a depth with no field data behind it.
func UnknownDepth() Depth { return Depth{} }

// Get returns the depth and whether it is known.
func (d Depth) Get() (float64, bool) { return d.meters, d.known }

// Known reports whether the depth was measured or looked up.
func (d Depth) Known() bool { return d.known }

// MarshalJSON encodes an unknown depth as null.
func (d Depth) MarshalJSON() ([]byte, error) {
	if !d.known {
		return []byte("null"), nil
	}
	return json.Marshal(d.meters)
}

// UnmarshalJSON accepts a number or null.
func (d *Depth) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*d = UnknownDepth()
		return nil
	}
	*d = KnownDepth(*v)
	return nil
}

// SoilType is the soil class selected on the site conditions step.
type SoilType string

const (
	SoilSandy       SoilType = "Sandy Soil"
	SoilClay        SoilType = "Clay Soil"
	SoilSilt        SoilType = "Silt Soil"
	SoilLoamy       SoilType = "Loamy Soil"
	SoilBlackCotton SoilType = "Black Cotton Soil"
	SoilAlluvial    SoilType = "Alluvial Soil"
)

// Valid reports whether s is one of the known soil classes.
func (s SoilType) Valid() bool {
	switch s {
	case SoilSandy, SoilClay, SoilSilt, SoilLoamy, SoilBlackCotton, SoilAlluvial:
		return true
	default:
		return false
	}
}

// SiteInput is the immutable snapshot of everything collected about a site.
type SiteInput struct {
	RoofAreaM2       float64     `json:"roof_area_m2"`
	OpenSpaceAreaM2  float64     `json:"open_space_area_m2"`
	DwellerCount     int         `json:"dweller_count"`
	Rainfall         RawRainfall `json:"rainfall"`
	GroundwaterDepth Depth       `json:"groundwater_depth_m"`
	SoilType         SoilType    `json:"soil_type,omitempty"`
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Identity carries the user-supplied strings printed on the report.
type Identity struct {
	FullName     string       `json:"full_name"`
	LocationText string       `json:"location_text,omitempty"`
	Location     *Coordinates `json:"location,omitempty"`
}

// nonNegative maps negative and non-finite values to 0.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// toINR rounds a rupee amount to an int, mapping NaN and negatives to 0 and
// saturating at math.MaxInt.
func toINR(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt:
		return math.MaxInt
	}
	return int(math.Round(v))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
