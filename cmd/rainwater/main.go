package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/rainwater-estimator-service/internal/adapter/http"
	"github.com/couchcryptid/rainwater-estimator-service/internal/adapter/groundwater"
	kafkaadapter "github.com/couchcryptid/rainwater-estimator-service/internal/adapter/kafka"
	"github.com/couchcryptid/rainwater-estimator-service/internal/adapter/nominatim"
	"github.com/couchcryptid/rainwater-estimator-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/rainwater-estimator-service/internal/adapter/postgres"
	redisadapter "github.com/couchcryptid/rainwater-estimator-service/internal/adapter/redis"
	"github.com/couchcryptid/rainwater-estimator-service/internal/adapter/xlsx"
	"github.com/couchcryptid/rainwater-estimator-service/internal/assessment"
	"github.com/couchcryptid/rainwater-estimator-service/internal/auth"
	"github.com/couchcryptid/rainwater-estimator-service/internal/config"
	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ready readiness
	var closers []namedCloser

	// Geocoder (feature-flagged via GEOCODER_ENABLED).
	var geocoder domain.Geocoder
	if cfg.GeocoderEnabled {
		client := nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.GeocoderTimeout, metrics, logger)
		geocoder = nominatim.NewCachedGeocoder(client, cfg.GeocoderCacheSize, metrics)
		logger.Info("nominatim geocoding enabled", "cache_size", cfg.GeocoderCacheSize, "timeout", cfg.GeocoderTimeout)
	} else {
		logger.Info("geocoding disabled")
	}

	// Rainfall archive, optionally behind a Redis cache.
	var archive domain.RainfallArchive = openmeteo.NewClient(openmeteo.Options{
		BaseURL:    cfg.RainfallArchiveURL,
		Timezone:   cfg.RainfallTimezone,
		Timeout:    cfg.RainfallTimeout,
		RetryCount: 2,
		Clock:      clock,
	}, metrics, logger)
	if cfg.RedisAddr != "" {
		var closer namedCloser
		archive, closer = withRainfallCache(ctx, archive, cfg, metrics, logger)
		closers = append(closers, closer)
	}

	var table domain.GroundwaterTable
	if cfg.GroundwaterTablePath != "" {
		t, err := groundwater.Load(cfg.GroundwaterTablePath)
		if err != nil {
			logger.Error("failed to load groundwater table", "path", cfg.GroundwaterTablePath, "error", err)
			os.Exit(1)
		}
		table = t
		logger.Info("groundwater table loaded", "path", cfg.GroundwaterTablePath, "records", t.Len())
	}

	// User store: Postgres when configured, otherwise process memory.
	var users auth.UserStore = auth.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		store := postgres.NewUserStore(db)
		if err := store.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		users = store
		ready = append(ready, store.CheckReadiness)
		closers = append(closers, namedCloser{"database", db.Close})
	} else {
		logger.Warn("DATABASE_URL not set, users are kept in memory")
	}

	var sink domain.ReportSink
	if cfg.ReportPublishingEnabled() {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaReportTopic, metrics, logger)
		sink = writer
		closers = append(closers, namedCloser{"kafka writer", writer.Close})
		logger.Info("report publishing enabled", "topic", cfg.KafkaReportTopic)
	}

	location, err := time.LoadLocation(cfg.RainfallTimezone)
	if err != nil {
		logger.Error("invalid rainfall timezone", "error", err)
		os.Exit(1)
	}

	engine := domain.DefaultEngineOptions()
	engine.StructureRates.MaterialPerM3INR = cfg.MaterialCostPerM3
	engine.Costs.WaterPricePerKLINR = cfg.WaterPricePerKL

	svc := assessment.New(assessment.Config{
		Geocoder:     geocoder,
		Archive:      archive,
		Groundwater:  table,
		Sink:         sink,
		Clock:        clock,
		HistoryStart: cfg.RainfallHistoryStart,
		Location:     location,
		Engine:       engine,
		Logger:       logger,
		Metrics:      metrics,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Assessor:       svc,
		Auth:           auth.NewService(users),
		Renderer:       xlsx.NewRenderer(),
		Ready:          ready,
		Metrics:        metrics,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c.close(); err != nil {
			logger.Error(c.name+" close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// withRainfallCache puts the Redis cache in front of archive. An unreachable
// Redis is only logged: the cache falls back to the archive on every error,
// so it never gates readiness.
func withRainfallCache(ctx context.Context, archive domain.RainfallArchive, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (domain.RainfallArchive, namedCloser) {
	store := redisadapter.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("rainfall cache unreachable, serving from archive", "addr", cfg.RedisAddr, "error", err)
	}
	logger.Info("rainfall cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.RainfallCacheTTL)
	return redisadapter.NewCachedArchive(archive, store, cfg.RainfallCacheTTL, metrics, logger), namedCloser{"redis", store.Close}
}

// readiness runs every dependency check in order.
type readiness []func(ctx context.Context) error

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, check := range r {
		if err := check(ctx); err != nil {
			return fmt.Errorf("dependency not ready: %w", err)
		}
	}
	return nil
}

type namedCloser struct {
	name  string
	close func() error
}
