package domain

import (
	"strings"
	"time"
)

// AssessmentReport is the flat payload handed to report renderers and sinks.
type AssessmentReport struct {
	ID          string    `json:"id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Identity
	Site SiteInput `json:"site"`

	Rainfall        CanonicalRainfall       `json:"rainfall"`
	Runoff          RunoffResult            `json:"runoff"`
	Recharge        RechargeResult          `json:"recharge"`
	Hydrogeo        HydrogeoAssessment      `json:"hydrogeo"`
	Structure       StructureRecommendation `json:"structure"`
	CostBenefit     CostBenefitResult       `json:"cost_benefit"`
	Suitability     SuitabilityScore        `json:"suitability"`
	SuitabilityBand SuitabilityBand         `json:"suitability_band"`
	Recommendations []string                `json:"recommendations,omitempty"`
}

// AssembleReport gathers the site, derived results, and identity into a
// report. It computes nothing; it fails with a *MissingDataError when a
// required field is absent.
func AssembleReport(site SiteInput, results Results, identity Identity) (AssessmentReport, error) {
	if strings.TrimSpace(identity.FullName) == "" {
		return AssessmentReport{}, &MissingDataError{Field: "full_name"}
	}
	switch {
	case results.Rainfall == nil:
		return AssessmentReport{}, &MissingDataError{Field: "rainfall"}
	case results.Runoff == nil:
		return AssessmentReport{}, &MissingDataError{Field: "runoff"}
	case results.Recharge == nil:
		return AssessmentReport{}, &MissingDataError{Field: "recharge"}
	case results.Structure == nil:
		return AssessmentReport{}, &MissingDataError{Field: "structure"}
	case results.CostBenefit == nil:
		return AssessmentReport{}, &MissingDataError{Field: "cost_benefit"}
	case results.Suitability == nil:
		return AssessmentReport{}, &MissingDataError{Field: "suitability"}
	}

	report := AssessmentReport{
		Identity:        identity,
		Site:            site,
		Rainfall:        *results.Rainfall,
		Runoff:          *results.Runoff,
		Recharge:        *results.Recharge,
		Structure:       *results.Structure,
		CostBenefit:     *results.CostBenefit,
		Suitability:     *results.Suitability,
		SuitabilityBand: results.Suitability.Band(),
		Recommendations: results.Recommendations,
	}
	if results.Hydrogeo != nil {
		report.Hydrogeo = *results.Hydrogeo
	}
	return report, nil
}
