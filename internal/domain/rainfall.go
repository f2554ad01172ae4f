package domain

import "math"

const (
	daysPerYear = 365

	// dailyThresholdMM separates daily averages from annual totals when the
	// unit is not given. No inhabited region averages 50 mm of rain per day.
	dailyThresholdMM = 50
)

// monsoonWeights is the share of annual rainfall falling in each month, Jan..Dec.
var monsoonWeights = [12]float64{0.02, 0.03, 0.05, 0.05, 0.10, 0.25, 0.20, 0.15, 0.08, 0.03, 0.02, 0.02}

// CanonicalRainfall is rainfall expressed as an annual total plus a monthly split.
type CanonicalRainfall struct {
	AnnualMM  float64     `json:"annual_mm"`
	MonthlyMM [12]float64 `json:"monthly_mm"`
}

// NormalizeRainfall converts a raw rainfall figure into annual millimetres and
// synthesizes a monsoon-weighted monthly distribution.
func NormalizeRainfall(raw RawRainfall) CanonicalRainfall {
	annual := annualizeRainfall(raw)
	return CanonicalRainfall{
		AnnualMM:  annual,
		MonthlyMM: distributeMonthly(annual),
	}
}

// annualizeRainfall returns 0 for missing, non-finite, or non-positive values.
func annualizeRainfall(raw RawRainfall) float64 {
	if raw.Value == nil {
		return 0
	}
	r := *raw.Value
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return 0
	}

	switch raw.Unit {
	case RainfallDaily:
		return nonNegative(r * daysPerYear)
	case RainfallAnnual:
		return r
	default:
		if r < dailyThresholdMM {
			return r * daysPerYear
		}
		return r
	}
}

// distributeMonthly splits an annual total using the normalized monsoon weights.
func distributeMonthly(annualMM float64) [12]float64 {
	var sum float64
	for _, w := range monsoonWeights {
		sum += w
	}

	var monthly [12]float64
	if sum == 0 {
		return monthly
	}
	for i, w := range monsoonWeights {
		monthly[i] = w / sum * annualMM
	}
	return monthly
}

// AnnualizeDailySeries averages a series of daily totals and scales it to a
// year, rounded to 0.01 mm. An empty series yields nil rainfall.
func AnnualizeDailySeries(daily []float64) RawRainfall {
	if len(daily) == 0 {
		return RawRainfall{}
	}
	var total float64
	for _, d := range daily {
		total += nonNegative(d)
	}
	annual := nonNegative(math.Round(total/float64(len(daily))*daysPerYear*100) / 100)
	return Rainfall(annual, RainfallAnnual)
}
