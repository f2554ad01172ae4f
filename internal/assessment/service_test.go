package assessment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
	"github.com/couchcryptid/rainwater-estimator-service/internal/workflow"
)

// --- mocks ---

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Search(ctx context.Context, text string) (domain.Coordinates, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(domain.Coordinates), args.Error(1)
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lon float64) (domain.Address, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(domain.Address), args.Error(1)
}

type mockArchive struct{ mock.Mock }

func (m *mockArchive) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]float64, error) {
	args := m.Called(ctx, lat, lon, start, end)
	daily, _ := args.Get(0).([]float64)
	return daily, args.Error(1)
}

type mockTable struct{ mock.Mock }

func (m *mockTable) Lookup(lat float64) (domain.GroundwaterRecord, error) {
	args := m.Called(lat)
	return args.Get(0).(domain.GroundwaterRecord), args.Error(1)
}

func (m *mockTable) LookupDistrict(name string) (domain.GroundwaterRecord, error) {
	args := m.Called(name)
	return args.Get(0).(domain.GroundwaterRecord), args.Error(1)
}

type mockSink struct{ mock.Mock }

func (m *mockSink) Publish(ctx context.Context, report domain.AssessmentReport) error {
	return m.Called(ctx, report).Error(0)
}

// --- fixtures ---

// 20:00 UTC on 1 June is already 2 June in Kolkata.
var fixedNow = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func completeRequest() Request {
	return Request{
		Identity: domain.Identity{
			FullName:     "Asha Rao",
			LocationText: "Indiranagar, Bengaluru",
			Location:     &domain.Coordinates{Lat: 12.9719, Lon: 77.6412},
		},
		Site: domain.SiteInput{
			RoofAreaM2:       100,
			OpenSpaceAreaM2:  50,
			DwellerCount:     4,
			Rainfall:         domain.Rainfall(1000, domain.RainfallAnnual),
			GroundwaterDepth: domain.KnownDepth(8),
			SoilType:         domain.SoilLoamy,
		},
	}
}

type fixture struct {
	geocoder *mockGeocoder
	archive  *mockArchive
	table    *mockTable
	sink     *mockSink
	metrics  *observability.Metrics
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		geocoder: &mockGeocoder{},
		archive:  &mockArchive{},
		table:    &mockTable{},
		sink:     &mockSink{},
		metrics:  observability.NewMetricsForTesting(),
	}
	f.svc = New(Config{
		Geocoder:     f.geocoder,
		Archive:      f.archive,
		Groundwater:  f.table,
		Sink:         f.sink,
		Clock:        clockwork.NewFakeClockAt(fixedNow),
		HistoryStart: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Location:     kolkata(t),
		Engine:       domain.DefaultEngineOptions(),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:      f.metrics,
	})
	t.Cleanup(func() {
		f.geocoder.AssertExpectations(t)
		f.archive.AssertExpectations(t)
		f.table.AssertExpectations(t)
		f.sink.AssertExpectations(t)
	})
	return f
}

// --- tests ---

func TestAssess_CompleteSubmission(t *testing.T) {
	f := newFixture(t)
	f.sink.On("Publish", mock.Anything, mock.MatchedBy(func(r domain.AssessmentReport) bool {
		return r.FullName == "Asha Rao" && r.Suitability.Value == 85
	})).Return(nil)

	out, err := f.svc.Assess(context.Background(), completeRequest())
	require.NoError(t, err)

	require.NotNil(t, out.Report)
	assert.NotEmpty(t, out.Report.ID)
	assert.Equal(t, fixedNow, out.Report.GeneratedAt)
	assert.InDelta(t, 85.0, out.Report.Runoff.AnnualM3, 1e-9)
	assert.Equal(t, workflow.ReportReady, out.Step)
	assert.Empty(t, out.Missing)
	assert.True(t, out.Published)
	assert.Equal(t, Sources{Location: SourceProvided, Rainfall: SourceProvided, Groundwater: SourceProvided}, out.Sources)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Assessments.WithLabelValues("complete")))
}

func TestAssess_ForwardGeocodeAndArchiveRainfall(t *testing.T) {
	f := newFixture(t)
	req := completeRequest()
	req.Identity.Location = nil
	req.Site.Rainfall = domain.RawRainfall{}

	coords := domain.Coordinates{Lat: 12.97, Lon: 77.64}
	f.geocoder.On("Search", mock.Anything, "Indiranagar, Bengaluru").Return(coords, nil)
	f.archive.On("FetchDaily", mock.Anything, 12.97, 77.64,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		mock.MatchedBy(func(end time.Time) bool { return end.Format(time.DateOnly) == "2024-06-02" }),
	).Return([]float64{2, 4, 0, 6}, nil)
	f.sink.On("Publish", mock.Anything, mock.Anything).Return(nil)

	out, err := f.svc.Assess(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, SourceForward, out.Sources.Location)
	assert.Equal(t, SourceArchive, out.Sources.Rainfall)
	require.NotNil(t, out.Report.Location)
	assert.Equal(t, coords, *out.Report.Location)
	// mean 3 mm/day
	assert.Equal(t, 1095.0, out.Report.Rainfall.AnnualMM)
	assert.Equal(t, domain.RainfallAnnual, out.Report.Site.Rainfall.Unit)
}

func TestAssess_ReverseGeocodeAndDistrictGroundwater(t *testing.T) {
	f := newFixture(t)
	req := completeRequest()
	req.Identity.LocationText = ""
	req.Site.GroundwaterDepth = domain.UnknownDepth()

	f.geocoder.On("Reverse", mock.Anything, 12.9719, 77.6412).
		Return(domain.Address{Suburb: "Indiranagar", District: "Bengaluru Urban", State: "Karnataka", Country: "India"}, nil)
	f.table.On("Lookup", 12.9719).Return(domain.GroundwaterRecord{}, fmt.Errorf("lookup: %w", domain.ErrNotFound))
	f.table.On("LookupDistrict", "Bengaluru Urban").Return(domain.GroundwaterRecord{Depth: domain.KnownDepth(21.3)}, nil)
	f.sink.On("Publish", mock.Anything, mock.Anything).Return(nil)

	out, err := f.svc.Assess(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, SourceReverse, out.Sources.Location)
	assert.Equal(t, SourceDistrict, out.Sources.Groundwater)
	assert.Equal(t, "Indiranagar, Bengaluru Urban, Karnataka, India", out.Report.LocationText)
	d, ok := out.Report.Site.GroundwaterDepth.Get()
	assert.True(t, ok)
	assert.Equal(t, 21.3, d)
	assert.Equal(t, domain.RechargeWell, out.Report.Recharge.RecommendedStructure)
}

func TestAssess_GroundwaterByLatitude(t *testing.T) {
	f := newFixture(t)
	req := completeRequest()
	req.Site.GroundwaterDepth = domain.UnknownDepth()

	f.table.On("Lookup", 12.9719).Return(domain.GroundwaterRecord{Depth: domain.KnownDepth(4)}, nil)
	f.sink.On("Publish", mock.Anything, mock.Anything).Return(nil)

	out, err := f.svc.Assess(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, SourceTable, out.Sources.Groundwater)
	assert.Equal(t, domain.RechargeSuitabilityHigh, out.Report.Hydrogeo.Suitability)
}

func TestAssess_ProvidersFailGracefully(t *testing.T) {
	f := newFixture(t)
	req := completeRequest()
	req.Identity.Location = nil
	req.Site.Rainfall = domain.RawRainfall{}
	req.Site.GroundwaterDepth = domain.UnknownDepth()

	f.geocoder.On("Search", mock.Anything, mock.Anything).
		Return(domain.Coordinates{}, fmt.Errorf("search: %w", domain.ErrUpstreamUnavailable))

	out, err := f.svc.Assess(context.Background(), req)
	require.NoError(t, err, "provider failures never fail the assessment")

	assert.Equal(t, SourceFailed, out.Sources.Location)
	assert.Equal(t, SourceMissing, out.Sources.Rainfall, "no coordinates, no archive call")
	assert.Equal(t, SourceMissing, out.Sources.Groundwater)
	assert.Equal(t, 0.0, out.Report.Rainfall.AnnualMM)

	// Location is still missing, so the form stops at the first step and
	// nothing is published.
	assert.Equal(t, workflow.CollectingBasics, out.Step)
	assert.Equal(t, []string{"Location"}, out.Missing)
	assert.False(t, out.Published)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Assessments.WithLabelValues("incomplete")))
}

func TestAssess_ArchiveFailureAndEmpty(t *testing.T) {
	t.Run("failure", func(t *testing.T) {
		f := newFixture(t)
		req := completeRequest()
		req.Site.Rainfall = domain.RawRainfall{}
		f.archive.On("FetchDaily", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, domain.ErrUpstreamUnavailable)
		f.sink.On("Publish", mock.Anything, mock.Anything).Return(nil)

		out, err := f.svc.Assess(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, SourceFailed, out.Sources.Rainfall)
		assert.Nil(t, out.Report.CostBenefit.PaybackYears)
	})

	t.Run("empty", func(t *testing.T) {
		f := newFixture(t)
		req := completeRequest()
		req.Site.Rainfall = domain.RawRainfall{}
		f.archive.On("FetchDaily", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]float64{}, nil)
		f.sink.On("Publish", mock.Anything, mock.Anything).Return(nil)

		out, err := f.svc.Assess(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, SourceArchiveNone, out.Sources.Rainfall)
		assert.Nil(t, out.Report.Site.Rainfall.Value)
	})
}

func TestAssess_PublishFailureLogged(t *testing.T) {
	f := newFixture(t)
	f.sink.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	out, err := f.svc.Assess(context.Background(), completeRequest())
	require.NoError(t, err)
	assert.NotNil(t, out.Report)
	assert.False(t, out.Published)
}

func TestAssess_MissingName(t *testing.T) {
	f := newFixture(t)
	req := completeRequest()
	req.Identity.FullName = " "

	out, err := f.svc.Assess(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingData)

	var missing *domain.MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "full_name", missing.Field)

	assert.Nil(t, out.Report)
	assert.NotNil(t, out.Results.Runoff, "results are still returned")
	assert.Equal(t, []string{"Full Name"}, out.Missing)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Assessments.WithLabelValues("invalid")))
}

func TestAssess_CostOverride(t *testing.T) {
	f := newFixture(t)
	f.sink.On("Publish", mock.Anything, mock.Anything).Return(nil)

	req := completeRequest()
	costs := domain.CostInputs{MaterialPriceINR: 10000, WaterPricePerKLINR: 50}
	req.Costs = &costs

	out, err := f.svc.Assess(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 10000, out.Report.CostBenefit.InitialInvestmentINR)
}

func TestAssess_NoProviders(t *testing.T) {
	svc := New(Config{Engine: domain.DefaultEngineOptions(), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	req := completeRequest()
	req.Identity.LocationText = ""
	out, err := svc.Assess(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, SourceProvided, out.Sources.Location)
	assert.Equal(t, workflow.ReportReady, out.Step)
	assert.False(t, out.Published)
}

func TestService_NotConfigured(t *testing.T) {
	svc := New(Config{})
	ctx := context.Background()

	_, err := svc.Rainfall(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.Search(ctx, "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.Reverse(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.GroundwaterByLatitude(1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.GroundwaterByDistrict("Pune")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestService_Rainfall(t *testing.T) {
	f := newFixture(t)
	f.archive.On("FetchDaily", mock.Anything, 1.0, 2.0, mock.Anything, mock.Anything).Return([]float64{1, 1}, nil)

	raw, err := f.svc.Rainfall(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, raw.Value)
	assert.Equal(t, 365.0, *raw.Value)
}
