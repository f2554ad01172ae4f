package domain

// RechargeSuitability grades how readily a site can recharge its aquifer.
type RechargeSuitability string

const (
	RechargeSuitabilityHigh     RechargeSuitability = "high"
	RechargeSuitabilityModerate RechargeSuitability = "moderate"
	RechargeSuitabilityLow      RechargeSuitability = "low"
	RechargeSuitabilityUnknown  RechargeSuitability = "unknown"
)

// HydrogeoAssessment is the hydrogeological guidance shown next to the estimates.
type HydrogeoAssessment struct {
	Suitability    RechargeSuitability `json:"suitability"`
	Guidance       string              `json:"guidance"`
	NeedsFieldData bool                `json:"needs_field_data"`
}

// AssessHydrogeology grades recharge suitability from the water table depth.
func AssessHydrogeology(depth Depth) HydrogeoAssessment {
	d, ok := depth.Get()
	switch {
	case !ok:
		return HydrogeoAssessment{
			Suitability:    RechargeSuitabilityUnknown,
			Guidance:       "Unknown: provide depth to water table. Field measurement (bore/handpump reading) recommended.",
			NeedsFieldData: true,
		}
	case d < 5:
		return HydrogeoAssessment{
			Suitability: RechargeSuitabilityHigh,
			Guidance:    "High (shallow water table): good for percolation pits and shallow recharge",
		}
	case d < 15:
		return HydrogeoAssessment{
			Suitability: RechargeSuitabilityModerate,
			Guidance:    "Moderate: consider engineered recharge pits or medium-depth wells",
		}
	default:
		return HydrogeoAssessment{
			Suitability: RechargeSuitabilityLow,
			Guidance:    "Low (deep water table): recharge wells may be required; storage recommended",
		}
	}
}
