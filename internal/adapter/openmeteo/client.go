// Package openmeteo fetches historical daily precipitation from the
// Open-Meteo archive API.
package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
)

const collaborator = "rainfall"

// Options configures the archive client.
type Options struct {
	BaseURL    string
	Timezone   string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	// Clock times each request; nil means the real clock.
	Clock clockwork.Clock
}

// Client implements domain.RainfallArchive.
type Client struct {
	rc       *resty.Client
	url      string
	timezone string
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewClient creates an archive client. Transport errors and 5xx responses
// are retried with backoff.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	rc := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(4 * opts.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Accept", "application/json")

	return &Client{
		rc:       rc,
		url:      opts.BaseURL,
		timezone: opts.Timezone,
		clock:    opts.Clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// FetchDaily returns one precipitation total per day between start and end
// inclusive. Days the archive reports as null are returned as 0.
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]float64, error) {
	var body archiveResponse
	began := c.clock.Now()
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":   fmt.Sprintf("%.4f", lat),
			"longitude":  fmt.Sprintf("%.4f", lon),
			"start_date": start.Format(time.DateOnly),
			"end_date":   end.Format(time.DateOnly),
			"daily":      "precipitation_sum",
			"timezone":   c.timezone,
		}).
		SetResult(&body).
		Get(c.url)
	c.metrics.CollaboratorDuration.WithLabelValues(collaborator).Observe(c.clock.Since(began).Seconds())

	if err != nil {
		c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "error").Inc()
		return nil, fmt.Errorf("rainfall archive request: %w: %w", domain.ErrUpstreamUnavailable, err)
	}
	if resp.IsError() {
		c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "error").Inc()
		return nil, fmt.Errorf("rainfall archive error: status %d: %s: %w", resp.StatusCode(), resp.String(), domain.ErrUpstreamUnavailable)
	}

	daily := make([]float64, len(body.Daily.PrecipitationSum))
	for i, v := range body.Daily.PrecipitationSum {
		if v != nil {
			daily[i] = *v
		}
	}

	outcome := "success"
	if len(daily) == 0 {
		outcome = "empty"
	}
	c.metrics.CollaboratorRequests.WithLabelValues(collaborator, outcome).Inc()
	c.logger.Debug("rainfall archive fetched", "lat", lat, "lon", lon, "days", len(daily))
	return daily, nil
}

type archiveResponse struct {
	Daily struct {
		Time             []string   `json:"time"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}
