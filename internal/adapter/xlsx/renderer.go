// Package xlsx renders assessment reports as Excel workbooks.
package xlsx

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
)

const (
	SummarySheet         = "Summary"
	MonthlySheet         = "Monthly"
	RecommendationsSheet = "Recommendations"

	contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Renderer implements domain.ReportRenderer.
type Renderer struct{}

// NewRenderer creates a workbook renderer.
func NewRenderer() *Renderer { return &Renderer{} }

// ContentType is the MIME type of the rendered workbook.
func (*Renderer) ContentType() string { return contentType }

// Render writes the report into a three-sheet workbook.
func (*Renderer) Render(report domain.AssessmentReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}
	if err := writeRows(f, SummarySheet, summaryRows(report), header); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(MonthlySheet); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", MonthlySheet, err)
	}
	if err := writeRows(f, MonthlySheet, monthlyRows(report), header); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(RecommendationsSheet); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", RecommendationsSheet, err)
	}
	recs := [][]any{{"#", "Recommendation"}}
	for i, line := range report.Recommendations {
		recs = append(recs, []any{i + 1, line})
	}
	if err := writeRows(f, RecommendationsSheet, recs, header); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 34); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 48); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(RecommendationsSheet, "B", "B", 90); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRows fills a sheet from A1; the first row is styled as a header.
func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
			}
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return fmt.Errorf("convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}
	return nil
}

func summaryRows(r domain.AssessmentReport) [][]any {
	depth := "Unknown"
	if d, ok := r.Site.GroundwaterDepth.Get(); ok {
		depth = fmt.Sprintf("%.2f", d)
	}
	payback := "No finite payback"
	if r.CostBenefit.PaybackYears != nil {
		payback = fmt.Sprintf("%.1f years", *r.CostBenefit.PaybackYears)
	}
	generated := ""
	if !r.GeneratedAt.IsZero() {
		generated = r.GeneratedAt.UTC().Format(time.RFC3339)
	}

	return [][]any{
		{"Field", "Value"},
		{"Report ID", r.ID},
		{"Generated at", generated},
		{"Full name", r.FullName},
		{"Location", r.LocationText},
		{"Roof area (m²)", round2(r.Site.RoofAreaM2)},
		{"Open space (m²)", round2(r.Site.OpenSpaceAreaM2)},
		{"Dwellers", r.Site.DwellerCount},
		{"Soil type", string(r.Site.SoilType)},
		{"Depth to water table (m)", depth},
		{"Annual rainfall (mm)", round2(r.Rainfall.AnnualMM)},
		{"Annual runoff (m³)", round2(r.Runoff.AnnualM3)},
		{"Recommended storage (m³)", round2(r.Runoff.RecommendedStorageM3)},
		{"Annual recharge (m³)", round2(r.Recharge.AnnualM3)},
		{"Recharge structure", r.Recharge.RecommendedStructure.Description()},
		{"Recharge suitability", string(r.Hydrogeo.Suitability)},
		{"Structure", r.Structure.Label},
		{"Structure size (m³)", round2(r.Structure.SizeM3)},
		{"Structure cost (INR)", r.Structure.EstimatedCostINR},
		{"Initial investment (INR)", r.CostBenefit.InitialInvestmentINR},
		{"Annual savings (INR)", round2(r.CostBenefit.AnnualSavingsINR)},
		{"Payback", payback},
		{"Suitability score", r.Suitability.Value},
		{"Suitability band", string(r.SuitabilityBand)},
	}
}

func monthlyRows(r domain.AssessmentReport) [][]any {
	rows := [][]any{{"Month", "Rainfall (mm)", "Runoff (m³)"}}
	for i, name := range monthNames {
		rows = append(rows, []any{name, round2(r.Rainfall.MonthlyMM[i]), round2(r.Runoff.MonthlyM3[i])})
	}
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
