package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
)

const collaborator = "geocoder"

// Client implements domain.Geocoder using the OpenStreetMap Nominatim API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim geocoding client. Nominatim's usage policy
// requires an identifying User-Agent on every request.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		metrics:   metrics,
		logger:    logger,
	}
}

// Search converts a free-text location to coordinates.
func (c *Client) Search(ctx context.Context, text string) (domain.Coordinates, error) {
	params := url.Values{
		"q":      {text},
		"format": {"json"},
		"limit":  {"1"},
	}

	var places []place
	if err := c.get(ctx, "/search?"+params.Encode(), "search", &places); err != nil {
		return domain.Coordinates{}, err
	}
	if len(places) == 0 {
		c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "empty").Inc()
		return domain.Coordinates{}, fmt.Errorf("search %q: %w", text, domain.ErrNotFound)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse longitude %q: %w", places[0].Lon, err)
	}
	c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "success").Inc()
	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}

// Reverse converts coordinates to address components.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (domain.Address, error) {
	params := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', 6, 64)},
		"format": {"json"},
	}

	var r reverseResponse
	if err := c.get(ctx, "/reverse?"+params.Encode(), "reverse", &r); err != nil {
		return domain.Address{}, err
	}
	// Nominatim reports "Unable to geocode" with a 200 and an error field.
	if r.Error != "" {
		c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "empty").Inc()
		return domain.Address{}, fmt.Errorf("reverse %.6f,%.6f: %s: %w", lat, lon, r.Error, domain.ErrNotFound)
	}

	c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "success").Inc()
	return domain.Address{
		Road:        r.Address.Road,
		Suburb:      r.Address.Suburb,
		District:    firstNonEmpty(r.Address.County, r.Address.CityDistrict, r.Address.City),
		State:       r.Address.State,
		Country:     r.Address.Country,
		DisplayName: r.DisplayName,
	}, nil
}

func (c *Client) get(ctx context.Context, path, method string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.CollaboratorDuration.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "error").Inc()
		return fmt.Errorf("%s geocode request: %w: %w", method, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("nominatim API error: status %d: %s: %w", resp.StatusCode, body, domain.ErrUpstreamUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}
	c.logger.Debug("nominatim request complete", "method", method, "duration", time.Since(start))
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Nominatim API response types. Coordinates arrive as strings.

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResponse struct {
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
	Error       string  `json:"error"`
}

type address struct {
	Road         string `json:"road"`
	Suburb       string `json:"suburb"`
	County       string `json:"county"`
	CityDistrict string `json:"city_district"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
}
