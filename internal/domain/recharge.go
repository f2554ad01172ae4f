package domain

// RechargeEfficiency is the share of rain on open ground assumed to reach the aquifer.
const RechargeEfficiency = 0.5

// shallowWaterTableM is the deepest water table still served by a percolation pit.
const shallowWaterTableM = 10

// RechargeStructure is the recommended groundwater recharge structure class.
type RechargeStructure string

const (
	RechargePercolationPit RechargeStructure = "percolation_pit"
	RechargeWell           RechargeStructure = "recharge_well"
	RechargeUnknown        RechargeStructure = "unknown"
)

// Description returns the human-readable recommendation for the structure.
func (s RechargeStructure) Description() string {
	switch s {
	case RechargePercolationPit:
		return "Percolation pit / shallow recharge trench"
	case RechargeWell:
		return "Recharge well (engineered) with filter media"
	default:
		return "Needs field data: measure depth to water table before choosing a recharge structure"
	}
}

// RechargeResult is the groundwater recharge estimate for the open space.
type RechargeResult struct {
	AnnualM3             float64           `json:"annual_m3"`
	RecommendedStructure RechargeStructure `json:"recommended_structure"`
}

// EstimateRecharge computes annual recharge potential from open space and
// picks a recharge structure from the water table depth.
func EstimateRecharge(openSpaceAreaM2 float64, rain CanonicalRainfall, depth Depth) RechargeResult {
	annual := nonNegative(nonNegative(openSpaceAreaM2) * (nonNegative(rain.AnnualMM) / millimetresPerMetre) * RechargeEfficiency)
	return RechargeResult{
		AnnualM3:             annual,
		RecommendedStructure: rechargeStructureFor(depth),
	}
}

func rechargeStructureFor(depth Depth) RechargeStructure {
	d, ok := depth.Get()
	switch {
	case !ok:
		return RechargeUnknown
	case d <= shallowWaterTableM:
		return RechargePercolationPit
	default:
		return RechargeWell
	}
}
