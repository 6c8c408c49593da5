package psgc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// BaseURL is the public PSGC reference API base URL.
	BaseURL = "https://psgc.cloud"
)

// maxResponseSize caps reference responses (10MB). The full barangay list of
// a large city is well under this.
const maxResponseSize = 10 * 1024 * 1024

// Option is one node of the PSGC hierarchy. ZipCode is populated only on
// city/municipality records.
type Option struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	ZipCode string `json:"zip_code,omitempty"`
}

// Client is a minimal HTTP client for the PSGC reference API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient constructs a PSGC client. An empty baseURL falls back to the
// public host.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

// Regions lists all administrative regions.
func (c *Client) Regions(ctx context.Context) ([]Option, error) {
	return c.list(ctx, "/api/regions")
}

// Provinces lists the provinces of a region. NCR returns an empty list.
func (c *Client) Provinces(ctx context.Context, regionCode string) ([]Option, error) {
	return c.list(ctx, fmt.Sprintf("/api/regions/%s/provinces", regionCode))
}

// AllProvinces lists every province regardless of region. Used by automated
// resolution, which must search before a region is known.
func (c *Client) AllProvinces(ctx context.Context) ([]Option, error) {
	return c.list(ctx, "/api/provinces")
}

// CitiesByRegion lists cities/municipalities directly under a region. Only
// meaningful for NCR, which has no province level.
func (c *Client) CitiesByRegion(ctx context.Context, regionCode string) ([]Option, error) {
	return c.list(ctx, fmt.Sprintf("/api/regions/%s/cities-municipalities", regionCode))
}

// CitiesByProvince lists cities/municipalities of a province.
func (c *Client) CitiesByProvince(ctx context.Context, provinceCode string) ([]Option, error) {
	return c.list(ctx, fmt.Sprintf("/api/provinces/%s/cities-municipalities", provinceCode))
}

// Barangays lists the barangays of a city/municipality.
func (c *Client) Barangays(ctx context.Context, cityCode string) ([]Option, error) {
	return c.list(ctx, fmt.Sprintf("/api/cities-municipalities/%s/barangays", cityCode))
}

// list performs a GET and decodes a JSON array of options.
func (c *Client) list(ctx context.Context, path string) ([]Option, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected HTTP status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var options []Option
	if err := json.Unmarshal(body, &options); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return options, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
