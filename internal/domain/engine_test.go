package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_ReferenceSite(t *testing.T) {
	got := Estimate(referenceSite(), DefaultEngineOptions())

	require.NotNil(t, got.Rainfall)
	assert.Equal(t, 1000.0, got.Rainfall.AnnualMM)

	require.NotNil(t, got.Runoff)
	assert.InDelta(t, 85.0, got.Runoff.AnnualM3, 1e-9)
	assert.InDelta(t, 12.75, got.Runoff.RecommendedStorageM3, 1e-9)

	require.NotNil(t, got.Recharge)
	assert.InDelta(t, 25.0, got.Recharge.AnnualM3, 1e-9)
	assert.Equal(t, RechargePercolationPit, got.Recharge.RecommendedStructure)

	require.NotNil(t, got.Hydrogeo)
	assert.Equal(t, RechargeSuitabilityModerate, got.Hydrogeo.Suitability)

	require.NotNil(t, got.Structure)
	assert.Equal(t, StructureMediumTankPit, got.Structure.Type)

	require.NotNil(t, got.CostBenefit)
	require.NotNil(t, got.CostBenefit.PaybackYears)

	require.NotNil(t, got.Suitability)
	assert.Equal(t, 85, got.Suitability.Value)

	assert.NotEmpty(t, got.Recommendations)
	assert.Contains(t, got.Recommendations[1], "12.75")
}

func TestEstimate_NilRainfall(t *testing.T) {
	site := referenceSite()
	site.Rainfall = RawRainfall{}

	got := Estimate(site, DefaultEngineOptions())

	assert.Equal(t, 0.0, got.Rainfall.AnnualMM)
	assert.Equal(t, 0.0, got.Runoff.AnnualM3)
	assert.Equal(t, [12]float64{}, got.Runoff.MonthlyM3)
	assert.Equal(t, 0.0, got.Recharge.AnnualM3)
	assert.Nil(t, got.CostBenefit.PaybackYears)
	assert.Contains(t, got.Recommendations[len(got.Recommendations)-1], "no finite payback")

	// Rain contributes nothing: 0.45 roof + 0.025 space + 0.084 groundwater.
	assert.Equal(t, 56, got.Suitability.Value)
}

func TestEstimate_Idempotent(t *testing.T) {
	site := referenceSite()
	first := Estimate(site, DefaultEngineOptions())
	second := Estimate(site, DefaultEngineOptions())

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestDepth_JSON(t *testing.T) {
	var site SiteInput
	require.NoError(t, json.Unmarshal([]byte(`{"roof_area_m2":10,"groundwater_depth_m":null}`), &site))
	assert.False(t, site.GroundwaterDepth.Known())

	require.NoError(t, json.Unmarshal([]byte(`{"groundwater_depth_m":7.5}`), &site))
	d, ok := site.GroundwaterDepth.Get()
	assert.True(t, ok)
	assert.Equal(t, 7.5, d)

	out, err := json.Marshal(SiteInput{GroundwaterDepth: UnknownDepth()})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"groundwater_depth_m":null`)
}

func TestSoilType_Valid(t *testing.T) {
	assert.True(t, SoilBlackCotton.Valid())
	assert.False(t, SoilType("Moon Dust").Valid())
	assert.False(t, SoilType("").Valid())
}

func TestAddress_Text(t *testing.T) {
	a := Address{Road: "MG Road", Suburb: "Indiranagar", District: "Bengaluru Urban", State: "Karnataka", Country: "India"}
	assert.Equal(t, "MG Road Indiranagar, Bengaluru Urban, Karnataka, India", a.Text())

	assert.Equal(t, "Somewhere", Address{DisplayName: "Somewhere"}.Text())
	assert.Equal(t, "Pune, India", Address{District: "Pune", Country: "India"}.Text())
}

func TestEstimate_HugeInputsStayFinite(t *testing.T) {
	site := referenceSite()
	site.RoofAreaM2 = 1e300
	site.OpenSpaceAreaM2 = 1e300
	site.Rainfall = Rainfall(1e300, RainfallAnnual)
	opts := DefaultEngineOptions()
	opts.Costs.WaterPricePerKLINR = 1e300

	got := Estimate(site, opts)

	finite := func(name string, v float64) {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v), "%s = %v", name, v)
	}
	finite("runoff annual", got.Runoff.AnnualM3)
	finite("storage", got.Runoff.RecommendedStorageM3)
	for _, m := range got.Runoff.MonthlyM3 {
		finite("runoff monthly", m)
	}
	finite("recharge annual", got.Recharge.AnnualM3)
	finite("structure size", got.Structure.SizeM3)
	finite("savings", got.CostBenefit.AnnualSavingsINR)
	assert.GreaterOrEqual(t, got.Structure.EstimatedCostINR, 0)

	_, err := json.Marshal(got)
	require.NoError(t, err)
	report, err := AssembleReport(site, got, Identity{FullName: "Asha Rao"})
	require.NoError(t, err)
	_, err = json.Marshal(report)
	require.NoError(t, err)
}
