package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL = "https://api.frankfurter.app"
	DefaultTimeout = 10 * time.Second
)

// Client is an HTTP client for the Frankfurter currency exchange API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// LatestRatesResponse represents the response from the /latest endpoint
type LatestRatesResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// NewClient creates a new Frankfurter API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// LatestRates fetches the latest exchange rates for the given base currency
func (c *Client) LatestRates(ctx context.Context, base string) (*LatestRatesResponse, error) {
	endpoint := fmt.Sprintf("%s/latest?base=%s", c.baseURL, url.QueryEscape(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rates request returned %d: %s", resp.StatusCode, string(body))
	}

	var rates LatestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}
	return &rates, nil
}
