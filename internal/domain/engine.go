package domain

import "fmt"

// Results holds every derived estimate for one site. Nil fields mean the
// estimator has not run.
type Results struct {
	Rainfall        *CanonicalRainfall       `json:"rainfall,omitempty"`
	Runoff          *RunoffResult            `json:"runoff,omitempty"`
	Recharge        *RechargeResult          `json:"recharge,omitempty"`
	Hydrogeo        *HydrogeoAssessment      `json:"hydrogeo,omitempty"`
	Structure       *StructureRecommendation `json:"structure,omitempty"`
	CostBenefit     *CostBenefitResult       `json:"cost_benefit,omitempty"`
	Suitability     *SuitabilityScore        `json:"suitability,omitempty"`
	Recommendations []string                 `json:"recommendations,omitempty"`
}

// EngineOptions tunes the pricing assumptions of a full estimate run.
type EngineOptions struct {
	Costs          CostInputs
	StructureRates StructureCostRates
}

// DefaultEngineOptions returns the form defaults.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Costs:          DefaultCostInputs(),
		StructureRates: DefaultStructureCostRates(),
	}
}

// Estimate runs the whole engine over a site snapshot. It is a pure
// recomputation: any input change means calling Estimate again.
func Estimate(site SiteInput, opts EngineOptions) Results {
	rain := NormalizeRainfall(site.Rainfall)
	runoff := EstimateRunoff(site.RoofAreaM2, rain, site.DwellerCount)
	recharge := EstimateRecharge(site.OpenSpaceAreaM2, rain, site.GroundwaterDepth)
	hydrogeo := AssessHydrogeology(site.GroundwaterDepth)
	structure := RecommendStructureWithRates(site.RoofAreaM2, runoff, site.OpenSpaceAreaM2, opts.StructureRates)
	costBenefit := ComputeCostBenefit(opts.Costs, runoff, site.DwellerCount)
	score := ScoreSuitability(site.RoofAreaM2, rain, site.OpenSpaceAreaM2, site.GroundwaterDepth)

	return Results{
		Rainfall:        &rain,
		Runoff:          &runoff,
		Recharge:        &recharge,
		Hydrogeo:        &hydrogeo,
		Structure:       &structure,
		CostBenefit:     &costBenefit,
		Suitability:     &score,
		Recommendations: recommendations(runoff, recharge, structure, costBenefit),
	}
}

func recommendations(runoff RunoffResult, recharge RechargeResult, structure StructureRecommendation, cb CostBenefitResult) []string {
	lines := []string{
		"Install rooftop capture with first-flush and leaf-screening.",
		fmt.Sprintf("Recommended storage tank (approx): %.2f m³.", runoff.RecommendedStorageM3),
		fmt.Sprintf("Suggested structure: %s, %.2f m³, estimated cost ₹%d.", structure.Label, structure.SizeM3, structure.EstimatedCostINR),
		fmt.Sprintf("Recharge structure suggestion: %s.", recharge.RecommendedStructure.Description()),
		fmt.Sprintf("Estimated annual water savings: ~₹%d (based on %.2f m³ usable harvest).",
			toINR(cb.AnnualSavingsINR), cb.UsableHarvestM3),
	}
	if cb.PaybackYears != nil {
		lines = append(lines, fmt.Sprintf("Payback period: %.1f years.", *cb.PaybackYears))
	} else {
		lines = append(lines, "Payback period: no finite payback (no savings entered).")
	}
	return lines
}
