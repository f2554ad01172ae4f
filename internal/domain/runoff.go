package domain

import "math"

const (
	// RunoffCoefficient is the collectible share of rain falling on an impervious roof.
	RunoffCoefficient = 0.85

	// PerCapitaLitresPerDay is the household demand assumption.
	PerCapitaLitresPerDay = 135

	minStorageM3        = 0.5
	storageRunoffShare  = 0.15
	storageDemandShare  = 0.3
	litresPerCubicMetre = 1000
	millimetresPerMetre = 1000
)

// RunoffResult is the rooftop runoff estimate.
type RunoffResult struct {
	AnnualM3             float64     `json:"annual_m3"`
	MonthlyM3            [12]float64 `json:"monthly_m3"`
	RecommendedStorageM3 float64     `json:"recommended_storage_m3"`
}

// EstimateRunoff computes annual and monthly rooftop runoff and a storage size
// bounded by household demand. Storage never drops below 0.5 m³.
func EstimateRunoff(roofAreaM2 float64, rain CanonicalRainfall, dwellerCount int) RunoffResult {
	roof := nonNegative(roofAreaM2)

	var monthly [12]float64
	for i, mm := range rain.MonthlyMM {
		monthly[i] = nonNegative(roof * (nonNegative(mm) / millimetresPerMetre) * RunoffCoefficient)
	}
	annual := nonNegative(roof * (nonNegative(rain.AnnualMM) / millimetresPerMetre) * RunoffCoefficient)

	return RunoffResult{
		AnnualM3:             annual,
		MonthlyM3:            monthly,
		RecommendedStorageM3: recommendStorage(annual, AnnualConsumptionM3(dwellerCount)),
	}
}

// AnnualConsumptionM3 is the yearly household water demand in cubic metres.
func AnnualConsumptionM3(dwellerCount int) float64 {
	if dwellerCount < 0 {
		dwellerCount = 0
	}
	return float64(dwellerCount) * PerCapitaLitresPerDay * daysPerYear / litresPerCubicMetre
}

// recommendStorage sizes the tank from runoff, capped by demand. With no
// runoff it falls back to demand-based sizing.
func recommendStorage(annualRunoffM3, annualConsumptionM3 float64) float64 {
	a := annualRunoffM3 * storageRunoffShare
	b := math.Max(minStorageM3, annualConsumptionM3*storageDemandShare)
	if a == 0 {
		return b
	}
	return math.Max(minStorageM3, math.Min(a, b))
}
