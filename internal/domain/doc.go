// Package domain holds the rainwater-harvesting estimation engine: the site
// input model, the collaborator contracts, and the deterministic formulas that
// turn raw site data into hydrological and financial estimates.
//
// Every estimator is a pure function. Nothing in this package performs I/O,
// reads the clock, or keeps state between calls, so calling an estimator twice
// with the same input always yields bit-identical output.
//
// # Input Conventions
//
// Areas are square metres, measured on the planner map (roof polygon and open
// space polygon). Rainfall arrives as a single number whose unit is carried in
// [RawRainfall.Unit]:
//
//	Daily:       average mm per day, annualized as r × 365
//	Annual:      mm per year, used as-is
//	Unspecified: legacy callers; r < 50 is assumed daily, otherwise annual
//
// The historical archive adapter always tags its figure as Annual, so the
// threshold only applies to values typed in by hand. Missing, non-finite, or
// negative rainfall normalizes to 0 mm rather than failing.
//
// Groundwater depth (metres below ground level) is a tagged optional, see
// [Depth]. Lookup tables publish "N/A" or blanks for unsurveyed wells; those
// become [UnknownDepth] at the adapter boundary.
//
// # Model Constants
//
//	Runoff coefficient:     0.85  (impervious roof)
//	Recharge efficiency:    0.50  (open ground infiltration)
//	Per-capita demand:      135 L/day
//	Usable harvest factor:  0.60
//	Monsoon weights:        Jan..Dec = 2,3,5,5,10,25,20,15,8,3,2,2 (%)
//
// # Degradation
//
// Estimators never return errors for bad numeric input. They substitute 0 or a
// neutral default (unknown depth scores 0.5 on the groundwater axis) and keep
// going. Only [AssembleReport] enforces required fields and returns a
// [MissingDataError] naming the missing one.
package domain
