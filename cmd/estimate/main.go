// Command estimate runs the rainwater harvesting engine for one site and
// prints the result as JSON. No network providers are used: every input comes
// from flags.
//
// Usage:
//
//	go run ./cmd/estimate \
//	  -name "Asha Rao" -location "Indiranagar, Bengaluru" \
//	  -roof 100 -open-space 50 -dwellers 4 \
//	  -rainfall 1000 -rainfall-unit annual -depth 8 -soil "Loamy Soil"
//
// Without -name the raw results are printed instead of a report.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "full name printed on the report")
	location := fs.String("location", "", "location text printed on the report")
	roof := fs.Float64("roof", 0, "roof area in m²")
	openSpace := fs.Float64("open-space", 0, "open space area in m²")
	dwellers := fs.Int("dwellers", 0, "number of dwellers")
	rainfall := fs.String("rainfall", "", "rainfall figure in mm (empty = no data)")
	unit := fs.String("rainfall-unit", "", "rainfall unit: annual, daily, or empty for auto-detect")
	depth := fs.String("depth", "", "depth to water table in m (empty = unknown)")
	soil := fs.String("soil", "", "soil type, e.g. \"Loamy Soil\"")
	material := fs.Float64("material-price", domain.DefaultCostInputs().MaterialPriceINR, "material price in INR")
	labour := fs.Float64("labour-price", domain.DefaultCostInputs().LabourPriceINR, "labour price in INR")
	misc := fs.Float64("misc-price", domain.DefaultCostInputs().MiscPriceINR, "miscellaneous price in INR")
	water := fs.Float64("water-price", domain.DefaultCostInputs().WaterPricePerKLINR, "water price in INR per kL")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	site, err := buildSite(*roof, *openSpace, *dwellers, *rainfall, *unit, *depth, *soil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	opts := domain.DefaultEngineOptions()
	opts.Costs.MaterialPriceINR = *material
	opts.Costs.LabourPriceINR = *labour
	opts.Costs.MiscPriceINR = *misc
	opts.Costs.WaterPricePerKLINR = *water

	results := domain.Estimate(site, opts)

	var out any = results
	if *name != "" {
		report, err := domain.AssembleReport(site, results, domain.Identity{FullName: *name, LocationText: *location})
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		out = report
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func buildSite(roof, openSpace float64, dwellers int, rainfall, unit, depth, soil string) (domain.SiteInput, error) {
	site := domain.SiteInput{
		RoofAreaM2:       roof,
		OpenSpaceAreaM2:  openSpace,
		DwellerCount:     dwellers,
		GroundwaterDepth: domain.UnknownDepth(),
		SoilType:         domain.SoilType(soil),
	}

	switch u := domain.RainfallUnit(unit); u {
	case domain.RainfallUnspecified, domain.RainfallAnnual, domain.RainfallDaily:
		if rainfall != "" {
			v, err := strconv.ParseFloat(rainfall, 64)
			if err != nil {
				return site, fmt.Errorf("invalid -rainfall %q: %w", rainfall, err)
			}
			site.Rainfall = domain.Rainfall(v, u)
		}
	default:
		return site, fmt.Errorf("invalid -rainfall-unit %q: want annual or daily", unit)
	}

	if depth != "" {
		v, err := strconv.ParseFloat(depth, 64)
		if err != nil {
			return site, fmt.Errorf("invalid -depth %q: %w", depth, err)
		}
		site.GroundwaterDepth = domain.KnownDepth(v)
	}
	if soil != "" && !site.SoilType.Valid() {
		return site, fmt.Errorf("unknown -soil %q", soil)
	}
	return site, nil
}
