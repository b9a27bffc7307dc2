// Package graph is a minimal Facebook Graph API client covering the two
// request shapes the insight stream needs: item name lookups and insight
// time-series fetches. Transport resilience (retries, timeout) lives in
// httpretry; this package owns URL handling, JSON decoding, and translation
// of the API error envelope into *Error values.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ignite/insight-stream/internal/pkg/httpretry"
)

// Config holds Graph API client settings.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
	MaxRetries     int
}

// Client is the Graph API client.
type Client struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new Graph API client.
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: timeout,
		}, config.MaxRetries),
	}
}

// BaseURL returns the endpoint requests are built against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// get issues a GET and returns the decoded response envelope. An API error
// envelope is returned as *Error; transport and decode failures are wrapped.
func (c *Client) get(ctx context.Context, reqURL string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("graph: failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("graph: failed to parse response: %w", err)
	}

	// The API reports errors in the body, typically alongside a non-2xx
	// status. The envelope error carries the useful code/message.
	if env.Error != nil {
		return nil, env.Error
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("graph: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return &env, nil
}

// FetchSeries fetches one insight metric/event series. The returned point
// list is already normalized across the page and app response shapes; it is
// empty (not an error) when the API has no data for the query.
func (c *Client) FetchSeries(ctx context.Context, reqURL string) ([]Point, error) {
	env, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	return env.points(), nil
}

// FetchName resolves an item id to its display name via the bare node
// endpoint: {base}/{id}?access_token={token}.
func (c *Client) FetchName(ctx context.Context, id, token string) (string, error) {
	reqURL := fmt.Sprintf("%s/%s?access_token=%s", c.baseURL, url.PathEscape(id), url.QueryEscape(token))
	env, err := c.get(ctx, reqURL)
	if err != nil {
		return "", err
	}
	if env.Name == "" {
		return "", fmt.Errorf("graph: node %q has no name", id)
	}
	return env.Name, nil
}
