// Package metricsapi fetches aggregated metric snapshots from the metrics
// edge function.
package metricsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"aesthetic_doctor_bot/internal/domain"
)

const maxErrorBody = 512

// HTTPDoer is the subset of *http.Client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-200 answer from the metrics endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("metrics endpoint responded with %d", e.StatusCode)
}

// Client issues authenticated metric requests.
type Client struct {
	endpoint string
	botToken string
	anonKey  string
	http     HTTPDoer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// NewClient builds a Client for endpoint. Requests carry botToken in the
// x-bot-token header and anonKey as a bearer token.
func NewClient(endpoint, botToken, anonKey string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("metrics endpoint is required")
	}
	if botToken == "" {
		return nil, errors.New("metrics bot token is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("parse metrics endpoint: %w", err)
	}

	client := &Client{
		endpoint: endpoint,
		botToken: botToken,
		anonKey:  anonKey,
		http:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Fetch requests the given metrics. An empty key list asks for everything the
// endpoint serves. The call is bounded only by ctx.
func (c *Client) Fetch(ctx context.Context, keys []domain.MetricKey) (domain.Snapshot, error) {
	if c == nil {
		return domain.Snapshot{}, errors.New("metrics client is not initialized")
	}

	target, err := url.Parse(c.endpoint)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse metrics endpoint: %w", err)
	}
	if len(keys) > 0 {
		query := target.Query()
		query.Set("metrics", domain.JoinKeys(keys, ","))
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("build metrics request: %w", err)
	}
	req.Header.Set("x-bot-token", c.botToken)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.Snapshot{}, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var snapshot domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode metrics response: %w", err)
	}
	return snapshot, nil
}
