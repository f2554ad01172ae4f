package domain

import "math"

// Suitability weights and the inputs that earn a full sub-score.
const (
	roofWeight  = 0.45
	rainWeight  = 0.35
	spaceWeight = 0.10
	gwWeight    = 0.10

	fullRoofM2       = 100
	fullRainMM       = 1200
	fullOpenSpaceM2  = 200
	dryWaterTableM   = 50
	unknownDepthNorm = 0.5
)

// SuitabilityBand is the display category for a suitability score.
type SuitabilityBand string

const (
	BandGood     SuitabilityBand = "good"
	BandModerate SuitabilityBand = "moderate"
	BandPoor     SuitabilityBand = "poor"
)

// SuitabilityScore is a composite 0–100 site suitability score.
type SuitabilityScore struct {
	Value int `json:"value"`
}

// Band maps the score to good (>66), moderate (34–66), or poor (≤33).
func (s SuitabilityScore) Band() SuitabilityBand {
	switch {
	case s.Value > 66:
		return BandGood
	case s.Value > 33:
		return BandModerate
	default:
		return BandPoor
	}
}

// ScoreSuitability combines normalized roof, rainfall, open space, and
// groundwater sub-scores into a 0–100 score. Unknown depth scores neutral.
func ScoreSuitability(roofAreaM2 float64, rain CanonicalRainfall, openSpaceAreaM2 float64, depth Depth) SuitabilityScore {
	roof := clamp(nonNegative(roofAreaM2)/fullRoofM2, 0, 1)
	rainScore := clamp(nonNegative(rain.AnnualMM)/fullRainMM, 0, 1)
	space := clamp(nonNegative(openSpaceAreaM2)/fullOpenSpaceM2, 0, 1)

	gw := unknownDepthNorm
	if d, ok := depth.Get(); ok {
		gw = clamp(1-d/dryWaterTableM, 0, 1)
	}

	score := roofWeight*roof + rainWeight*rainScore + spaceWeight*space + gwWeight*gw
	return SuitabilityScore{Value: int(math.Round(score * 100))}
}
