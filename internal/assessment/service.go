// Package assessment runs a site assessment end to end: it fills gaps in the
// submitted site from the configured data providers, runs the estimation
// engine, assembles the report, and hands complete reports to the sink.
//
// Every provider is optional. A nil or failing provider leaves the matching
// input absent and the engine degrades as it would for a user who skipped
// the field.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
	"github.com/couchcryptid/rainwater-estimator-service/internal/workflow"
)

// ErrNotConfigured is returned when an operation needs a provider the
// service was built without.
var ErrNotConfigured = errors.New("provider not configured")

// Request is one submitted assessment form.
type Request struct {
	Identity domain.Identity    `json:"identity"`
	Site     domain.SiteInput   `json:"site"`
	Costs    *domain.CostInputs `json:"costs,omitempty"`
}

// Outcome is the result of Assess. Report is nil when the report could not
// be assembled.
type Outcome struct {
	Report    *domain.AssessmentReport `json:"report,omitempty"`
	Results   domain.Results           `json:"results"`
	Step      workflow.Step            `json:"step"`
	Missing   []string                 `json:"missing,omitempty"`
	Sources   Sources                  `json:"sources"`
	Published bool                     `json:"published"`
}

// Config holds the service dependencies. Providers may be nil.
type Config struct {
	Geocoder     domain.Geocoder
	Archive      domain.RainfallArchive
	Groundwater  domain.GroundwaterTable
	Sink         domain.ReportSink
	Clock        clockwork.Clock
	HistoryStart time.Time
	Location     *time.Location
	Engine       domain.EngineOptions
	Logger       *slog.Logger
	Metrics      *observability.Metrics
}

// Service orchestrates assessments.
type Service struct {
	geocoder     domain.Geocoder
	archive      domain.RainfallArchive
	groundwater  domain.GroundwaterTable
	sink         domain.ReportSink
	clock        clockwork.Clock
	historyStart time.Time
	location     *time.Location
	engine       domain.EngineOptions
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// New creates a Service. A nil Clock uses the real clock, a nil Location
// uses UTC, and nil Metrics are kept off the default registry.
func New(cfg Config) *Service {
	s := &Service{
		geocoder:     cfg.Geocoder,
		archive:      cfg.Archive,
		groundwater:  cfg.Groundwater,
		sink:         cfg.Sink,
		clock:        cfg.Clock,
		historyStart: cfg.HistoryStart,
		location:     cfg.Location,
		engine:       cfg.Engine,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetricsForTesting()
	}
	return s
}

// Assess runs one assessment. The returned error is non-nil only when the
// report cannot be assembled; the Outcome is populated either way.
func (s *Service) Assess(ctx context.Context, req Request) (Outcome, error) {
	identity, site := req.Identity, req.Site
	var out Outcome

	var district string
	identity, district, out.Sources.Location = s.enrichLocation(ctx, identity)
	site.Rainfall, out.Sources.Rainfall = s.enrichRainfall(ctx, site.Rainfall, identity.Location)
	site.GroundwaterDepth, out.Sources.Groundwater = s.enrichGroundwater(site.GroundwaterDepth, identity.Location, district)

	opts := s.engine
	if req.Costs != nil {
		opts.Costs = *req.Costs
	}
	sess := workflow.NewSession(workflow.Snapshot{Identity: identity, Site: site})
	out.Missing = sess.Resume()
	out.Step = sess.Step()

	snap := sess.Snapshot()
	out.Results = domain.Estimate(snap.Site, opts)
	report, err := domain.AssembleReport(snap.Site, out.Results, snap.Identity)
	if err != nil {
		s.metrics.Assessments.WithLabelValues("invalid").Inc()
		return out, fmt.Errorf("assemble report: %w", err)
	}
	report.ID = uuid.NewString()
	report.GeneratedAt = s.clock.Now().UTC()
	out.Report = &report

	s.metrics.SuitabilityScore.Observe(float64(report.Suitability.Value))
	if out.Step != workflow.ReportReady {
		s.metrics.Assessments.WithLabelValues("incomplete").Inc()
		return out, nil
	}
	s.metrics.Assessments.WithLabelValues("complete").Inc()

	if s.sink != nil {
		if err := s.sink.Publish(ctx, report); err != nil {
			s.logger.Warn("report publish failed", "report_id", report.ID, "error", err)
		} else {
			out.Published = true
		}
	}

	s.logger.Info("assessment complete",
		"report_id", report.ID,
		"suitability", report.Suitability.Value,
		"band", report.SuitabilityBand,
		"location_source", out.Sources.Location,
		"rainfall_source", out.Sources.Rainfall,
		"groundwater_source", out.Sources.Groundwater,
	)
	return out, nil
}

// Rainfall fetches the archive history for a point and returns it annualized.
// A nil Value in the result means the archive had no data.
func (s *Service) Rainfall(ctx context.Context, lat, lon float64) (domain.RawRainfall, error) {
	if s.archive == nil {
		return domain.RawRainfall{}, fmt.Errorf("rainfall archive: %w", ErrNotConfigured)
	}
	daily, err := s.archive.FetchDaily(ctx, lat, lon, s.historyStart, s.today())
	if err != nil {
		return domain.RawRainfall{}, err
	}
	return domain.AnnualizeDailySeries(daily), nil
}

// Search forwards to the geocoder.
func (s *Service) Search(ctx context.Context, text string) (domain.Coordinates, error) {
	if s.geocoder == nil {
		return domain.Coordinates{}, fmt.Errorf("geocoder: %w", ErrNotConfigured)
	}
	return s.geocoder.Search(ctx, text)
}

// Reverse forwards to the geocoder.
func (s *Service) Reverse(ctx context.Context, lat, lon float64) (domain.Address, error) {
	if s.geocoder == nil {
		return domain.Address{}, fmt.Errorf("geocoder: %w", ErrNotConfigured)
	}
	return s.geocoder.Reverse(ctx, lat, lon)
}

// GroundwaterByLatitude looks up the nearest surveyed well.
func (s *Service) GroundwaterByLatitude(lat float64) (domain.GroundwaterRecord, error) {
	if s.groundwater == nil {
		return domain.GroundwaterRecord{}, fmt.Errorf("groundwater table: %w", ErrNotConfigured)
	}
	return s.groundwater.Lookup(lat)
}

// GroundwaterByDistrict looks up a well by district name.
func (s *Service) GroundwaterByDistrict(name string) (domain.GroundwaterRecord, error) {
	if s.groundwater == nil {
		return domain.GroundwaterRecord{}, fmt.Errorf("groundwater table: %w", ErrNotConfigured)
	}
	return s.groundwater.LookupDistrict(name)
}

// today is midnight of the current date in the archive's timezone.
func (s *Service) today() time.Time {
	now := s.clock.Now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}
