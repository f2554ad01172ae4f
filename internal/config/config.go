package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // RAINFALL_TIMEZONE must resolve in minimal containers

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Nominatim geocoding.
	GeocoderEnabled    bool
	NominatimBaseURL   string
	NominatimUserAgent string
	GeocoderTimeout    time.Duration
	GeocoderCacheSize  int

	// Open-Meteo rainfall archive.
	RainfallArchiveURL   string
	RainfallTimeout      time.Duration
	RainfallHistoryStart time.Time
	RainfallTimezone     string

	// Redis cache for rainfall series. Empty address disables the cache.
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RainfallCacheTTL time.Duration

	GroundwaterTablePath string
	DatabaseURL          string

	// Report publishing. No brokers disables it.
	KafkaBrokers     []string
	KafkaReportTopic string

	MaterialCostPerM3 float64
	WaterPricePerKL   float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := parsePositiveDuration("GEOCODER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	rainfallTimeout, err := parsePositiveDuration("RAINFALL_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("RAINFALL_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}

	historyStart, err := time.Parse(time.DateOnly, sharedcfg.EnvOrDefault("RAINFALL_HISTORY_START", "2020-01-01"))
	if err != nil {
		return nil, errors.New("invalid RAINFALL_HISTORY_START: want YYYY-MM-DD")
	}

	redisDB, err := strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}

	materialCost, err := parseNonNegativeFloat("MATERIAL_COST_PER_M3", "8000")
	if err != nil {
		return nil, err
	}
	waterPrice, err := parseNonNegativeFloat("WATER_PRICE_PER_KL", "30")
	if err != nil {
		return nil, err
	}

	geocoderEnabled := true
	if v := os.Getenv("GEOCODER_ENABLED"); v != "" {
		geocoderEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: parseList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),

		GeocoderEnabled:    geocoderEnabled,
		NominatimBaseURL:   sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "rainwater-estimator/1.0"),
		GeocoderTimeout:    geocoderTimeout,
		GeocoderCacheSize:  parseCacheSize(),

		RainfallArchiveURL:   sharedcfg.EnvOrDefault("RAINFALL_ARCHIVE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		RainfallTimeout:      rainfallTimeout,
		RainfallHistoryStart: historyStart,
		RainfallTimezone:     sharedcfg.EnvOrDefault("RAINFALL_TIMEZONE", "Asia/Kolkata"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		RainfallCacheTTL: cacheTTL,

		GroundwaterTablePath: os.Getenv("GROUNDWATER_TABLE_PATH"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),

		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "assessment-reports"),

		MaterialCostPerM3: materialCost,
		WaterPricePerKL:   waterPrice,
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if _, err := time.LoadLocation(cfg.RainfallTimezone); err != nil {
		return nil, fmt.Errorf("invalid RAINFALL_TIMEZONE: %w", err)
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.GeocoderEnabled && cfg.NominatimUserAgent == "" {
		return nil, errors.New("NOMINATIM_USER_AGENT is required when geocoding is enabled")
	}

	return cfg, nil
}

// ReportPublishingEnabled reports whether assessment reports go to Kafka.
func (c *Config) ReportPublishingEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
