package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/walletkit/walletkit/ports"
)

const defaultTimeout = 10 * time.Second

// Client talks to the hosted auth backend over HTTP.
type Client struct {
	baseURL string
	origin  string
	http    *http.Client
}

var _ ports.BackendClient = (*Client)(nil)

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}

	return &Client{
		baseURL: baseURL,
		origin:  parsed.Scheme + "://" + parsed.Host,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Origin returns the backend's web origin (scheme+host+port).
func (c *Client) Origin() string {
	return c.origin
}

// ValidateKey checks the configured API key against the backend.
func (c *Client) ValidateKey(ctx context.Context, apiKey string) (ports.KeyValidation, error) {
	var out ports.KeyValidation
	err := c.post(ctx, "/validate-key", map[string]string{"apiKey": apiKey}, &out)
	if err != nil {
		return ports.KeyValidation{}, err
	}
	return out, nil
}

// ExchangeCode trades a redirect-callback authorization code for a token and
// user record.
func (c *Client) ExchangeCode(ctx context.Context, code, clientID string) (ports.CodeExchange, error) {
	var out ports.CodeExchange
	err := c.post(ctx, "/callback", map[string]string{"code": code, "clientId": clientID}, &out)
	if err != nil {
		return ports.CodeExchange{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
