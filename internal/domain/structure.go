package domain

// StructureType is the storage/recharge structure class chosen from roof size.
type StructureType string

const (
	StructureSmallBarrel       StructureType = "small_barrel"
	StructureMediumTankPit     StructureType = "medium_tank_pit"
	StructureLargeTankRecharge StructureType = "large_tank_recharge"
)

// Roof area tiers, inclusive upper bounds in m².
const (
	smallRoofMaxM2  = 30
	mediumRoofMaxM2 = 150

	// rechargePitMinOpenSpaceM2 is the open space above which a large site can
	// take a recharge pit instead of an engineered well.
	rechargePitMinOpenSpaceM2 = 20
)

// StructureCostRates are the unit costs used to price a structure.
type StructureCostRates struct {
	MaterialPerM3INR float64 `json:"material_per_m3_inr"`
	LabourShare      float64 `json:"labour_share"`
	MiscINR          float64 `json:"misc_inr"`
	DesignINR        float64 `json:"design_inr"`
}

// DefaultStructureCostRates returns the standard pricing assumptions.
func DefaultStructureCostRates() StructureCostRates {
	return StructureCostRates{
		MaterialPerM3INR: 8000,
		LabourShare:      0.25,
		MiscINR:          2000,
		DesignINR:        3000,
	}
}

// StructureRecommendation is a sized and priced storage structure.
type StructureRecommendation struct {
	Type             StructureType `json:"type"`
	Label            string        `json:"label"`
	SizeM3           float64       `json:"size_m3"`
	EstimatedCostINR int           `json:"estimated_cost_inr"`
}

// RecommendStructure selects a structure tier from roof area and prices it
// with the default cost rates.
func RecommendStructure(roofAreaM2 float64, runoff RunoffResult, openSpaceAreaM2 float64) StructureRecommendation {
	return RecommendStructureWithRates(roofAreaM2, runoff, openSpaceAreaM2, DefaultStructureCostRates())
}

// RecommendStructureWithRates is RecommendStructure with explicit cost rates.
func RecommendStructureWithRates(roofAreaM2 float64, runoff RunoffResult, openSpaceAreaM2 float64, rates StructureCostRates) StructureRecommendation {
	roof := nonNegative(roofAreaM2)
	annual := nonNegative(runoff.AnnualM3)

	var rec StructureRecommendation
	switch {
	case roof <= smallRoofMaxM2:
		rec = StructureRecommendation{
			Type:   StructureSmallBarrel,
			Label:  "Small rain barrel / 1–3 m³ tank",
			SizeM3: clamp(annual*0.05, 1, 3),
		}
	case roof <= mediumRoofMaxM2:
		rec = StructureRecommendation{
			Type:   StructureMediumTankPit,
			Label:  "Medium storage tank + percolation pit",
			SizeM3: clamp(annual*0.10, 3, 10),
		}
	default:
		label := "Large storage (Large tank + engineered recharge well)"
		if nonNegative(openSpaceAreaM2) > rechargePitMinOpenSpaceM2 {
			label = "Large storage (Recharge pit + tank)"
		}
		rec = StructureRecommendation{
			Type:   StructureLargeTankRecharge,
			Label:  label,
			SizeM3: clamp(annual*0.15, 10, 30),
		}
	}

	rec.EstimatedCostINR = structureCost(rec.SizeM3, rates)
	return rec
}

func structureCost(sizeM3 float64, rates StructureCostRates) int {
	material := sizeM3 * nonNegative(rates.MaterialPerM3INR)
	labour := material * nonNegative(rates.LabourShare)
	return toINR(material + labour + nonNegative(rates.MiscINR) + nonNegative(rates.DesignINR))
}
