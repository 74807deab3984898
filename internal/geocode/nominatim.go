// Package geocode adapts the Nominatim search API to the pipeline's
// text -> coordinates contract. Every failure mode collapses to a negative
// result: a single miss routes an article to the review bucket instead of
// blocking the run, so nothing here is retried.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/pipeline"
)

// Config captures the lookup service parameters.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client performs forward geocoding lookups.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &pipeline.ConfigurationError{Reason: "geocode base URL is required"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve converts a location name into coordinates. The sentinel "N/A" and
// the empty string short-circuit without touching the network.
func (c *Client) Resolve(ctx context.Context, location string) (float64, float64, bool) {
	if location == "" || location == pipeline.LocationUnknown {
		return 0, 0, false
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.cfg.BaseURL, url.QueryEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, false
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("geocode lookup failed", zap.String("location", location), zap.Error(err))
		return 0, 0, false
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("geocode lookup rejected",
			zap.String("location", location),
			zap.Int("status", resp.StatusCode),
		)
		return 0, 0, false
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.logger.Warn("geocode response malformed", zap.String("location", location), zap.Error(err))
		return 0, 0, false
	}
	if len(results) == 0 {
		c.logger.Debug("geocode returned no results", zap.String("location", location))
		return 0, 0, false
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
