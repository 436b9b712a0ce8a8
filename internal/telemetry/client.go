package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yegors/flight-overlay/pkg/logger"
)

// Client fetches telemetry reports from the sim-side REST endpoint
type Client struct {
	httpClient *http.Client
	sourceURL  string
	logger     *logger.Logger
}

// NewClient creates a new telemetry client
func NewClient(sourceURL string, timeout time.Duration, loggerObj *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		sourceURL: sourceURL,
		logger:    loggerObj.Named("telemetry-cli"),
	}
}

// Fetch performs one GET against the endpoint and decodes the report
func (c *Client) Fetch(ctx context.Context) (*Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var report Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	c.logger.Debug("Fetched telemetry",
		logger.Bool("has_position", report.Position() != nil),
		logger.Float64("elapsed", report.TEl),
	)

	return &report, nil
}
