package domain

import "math"

// usableHarvestShare is the share of harvested water that replaces purchased water.
const usableHarvestShare = 0.6

// CostInputs are the user-editable prices behind the cost-benefit estimate.
type CostInputs struct {
	MaterialPriceINR      float64 `json:"material_price_inr"`
	LabourPriceINR        float64 `json:"labour_price_inr"`
	MiscPriceINR          float64 `json:"misc_price_inr"`
	WaterPricePerKLINR    float64 `json:"water_price_per_kl_inr"`
	TankerSavingAnnualINR float64 `json:"tanker_saving_annual_inr"`
}

// DefaultCostInputs returns the prices the form starts with.
func DefaultCostInputs() CostInputs {
	return CostInputs{
		MaterialPriceINR:   30000,
		LabourPriceINR:     8000,
		MiscPriceINR:       2000,
		WaterPricePerKLINR: 30,
	}
}

// CostBenefitResult is the investment and savings estimate.
type CostBenefitResult struct {
	InitialInvestmentINR int     `json:"initial_investment_inr"`
	AnnualConsumptionM3  float64 `json:"annual_consumption_m3"`
	UsableHarvestM3      float64 `json:"usable_harvest_m3"`
	AnnualSavingsINR     float64 `json:"annual_savings_inr"`

	// PaybackYears is nil when there are no savings to recover the investment.
	PaybackYears *float64 `json:"payback_years"`
}

// ComputeCostBenefit estimates investment, usable harvest, yearly savings, and
// the payback period.
func ComputeCostBenefit(costs CostInputs, runoff RunoffResult, dwellerCount int) CostBenefitResult {
	initial := toINR(nonNegative(costs.MaterialPriceINR) + nonNegative(costs.LabourPriceINR) + nonNegative(costs.MiscPriceINR))
	consumption := AnnualConsumptionM3(dwellerCount)
	usable := math.Min(nonNegative(runoff.AnnualM3), consumption) * usableHarvestShare
	savings := nonNegative(usable*nonNegative(costs.WaterPricePerKLINR) + nonNegative(costs.TankerSavingAnnualINR))

	result := CostBenefitResult{
		InitialInvestmentINR: initial,
		AnnualConsumptionM3:  consumption,
		UsableHarvestM3:      usable,
		AnnualSavingsINR:     savings,
	}
	// A payback too long to represent is no finite payback.
	if payback := float64(initial) / savings; savings > 0 && !math.IsInf(payback, 0) {
		result.PaybackYears = &payback
	}
	return result
}
