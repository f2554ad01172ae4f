// Package workflow models the multi-step assessment form as a linear state
// machine over a single site snapshot.
//
//	CollectingBasics → CollectingRainfall → CollectingSiteConditions → ReportReady
//
// Moving backward is a resubmission: a new Session replays the edited
// snapshot, and the engine is rerun from scratch whenever a report is requested.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
)

// Step is a stage of the assessment form.
type Step int

const (
	CollectingBasics Step = iota
	CollectingRainfall
	CollectingSiteConditions
	ReportReady
)

func (s Step) String() string {
	switch s {
	case CollectingBasics:
		return "collecting_basics"
	case CollectingRainfall:
		return "collecting_rainfall"
	case CollectingSiteConditions:
		return "collecting_site_conditions"
	case ReportReady:
		return "report_ready"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// MarshalText encodes the step by name.
func (s Step) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a step name written by MarshalText.
func (s *Step) UnmarshalText(text []byte) error {
	for step := CollectingBasics; step <= ReportReady; step++ {
		if step.String() == string(text) {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("unknown step %q", text)
}

// Snapshot is everything the form has collected so far.
type Snapshot struct {
	Identity domain.Identity
	Site     domain.SiteInput
}

// IncompleteError lists the fields that block leaving the current step.
type IncompleteError struct {
	Step    Step
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("please provide: %s", strings.Join(e.Missing, ", "))
}

// Session is the state container for one assessment in progress. It holds a
// single immutable snapshot; going back to an earlier step means starting a
// new Session from the edited snapshot, and the engine reruns from scratch.
type Session struct {
	step     Step
	snapshot Snapshot
}

// NewSession starts a session at CollectingBasics.
func NewSession(snap Snapshot) *Session {
	return &Session{step: CollectingBasics, snapshot: snap}
}

// Step returns the current stage.
func (s *Session) Step() Step { return s.step }

// Snapshot returns a copy of the collected data.
func (s *Session) Snapshot() Snapshot { return s.snapshot }

// Advance moves to the next step when the current step's requirements are
// met, and returns an *IncompleteError naming what is missing otherwise.
func (s *Session) Advance() error {
	if s.step == ReportReady {
		return nil
	}
	if missing := requirements(s.step, s.snapshot); len(missing) > 0 {
		return &IncompleteError{Step: s.step, Missing: missing}
	}
	s.step++
	return nil
}

// Resume advances as far as the snapshot allows and returns what is missing
// at the step it stops on.
func (s *Session) Resume() []string {
	for s.step != ReportReady {
		var inc *IncompleteError
		if err := s.Advance(); errors.As(err, &inc) {
			return inc.Missing
		}
	}
	return nil
}

func requirements(step Step, snap Snapshot) []string {
	var missing []string
	switch step {
	case CollectingBasics:
		if strings.TrimSpace(snap.Identity.FullName) == "" {
			missing = append(missing, "Full Name")
		}
		if snap.Site.DwellerCount <= 0 {
			missing = append(missing, "Number of Dwellers")
		}
		if snap.Identity.Location == nil {
			missing = append(missing, "Location")
		}
		if snap.Site.RoofAreaM2 <= 0 {
			missing = append(missing, "Roof Area")
		}
	case CollectingRainfall:
		// Rainfall may legitimately be unavailable; the engine treats it as 0 mm.
	case CollectingSiteConditions:
		if !snap.Site.SoilType.Valid() {
			missing = append(missing, "Soil Type")
		}
		if snap.Site.OpenSpaceAreaM2 <= 0 {
			missing = append(missing, "Available Open Space")
		}
		if !snap.Site.GroundwaterDepth.Known() {
			missing = append(missing, "Depth to water table (m)")
		}
	}
	return missing
}
