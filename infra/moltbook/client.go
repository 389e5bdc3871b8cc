// Package moltbook talks to the Moltbook REST API and maps its JSON into
// domain types.
package moltbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/auth"
)

// Client is a thin HTTP wrapper for the Moltbook API.
// It handles base URL construction, API key injection and error decoding.
type Client struct {
	baseURL string
	keys    auth.KeyProvider
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a Moltbook API client. keys may be nil for a client that
// only registers agents.
func NewClient(baseURL string, keys auth.KeyProvider, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		keys:    keys,
		http:    &http.Client{},
		log:     log.With().Str("component", "moltbook").Logger(),
	}
}

// WithKeys returns a copy of the client that authenticates with keys.
func (c *Client) WithKeys(keys auth.KeyProvider) *Client {
	cp := *c
	cp.keys = keys
	return &cp
}

// Get performs an authenticated GET request and decodes the body into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, true, out)
}

// Post performs an authenticated POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, true, out)
}

// PostAnonymous performs a POST request without the Authorization header.
func (c *Client) PostAnonymous(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, false, out)
}

// Delete performs an authenticated DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, true, out)
}

func (c *Client) do(ctx context.Context, method, path string, body any, authenticated bool, out any) error {
	var token string
	if authenticated {
		if c.keys == nil {
			return fmt.Errorf("auth: %w", domain.ErrNoAPIKey)
		}
		key, err := c.keys.APIKey()
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		token = key
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &domain.NetworkError{Err: fmt.Errorf("request to %s: %w", path, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Err: fmt.Errorf("reading response: %w", err)}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

type errorBody struct {
	Error             json.RawMessage `json:"error"`
	Message           json.RawMessage `json:"message"`
	RetryAfterSeconds float64         `json:"retry_after_seconds"`
	RetryAfterMinutes float64         `json:"retry_after_minutes"`
}

const fallbackMessage = "Request failed"

// decodeError turns a non-2xx response into a domain error. The body is
// optional and any part of it may be malformed.
func decodeError(resp *http.Response, data []byte) error {
	var body errorBody
	// Partial decodes are fine; missing fields keep their zero value.
	_ = json.Unmarshal(data, &body)

	msg := firstString(body.Error, body.Message)
	if msg == "" {
		msg = fallbackMessage
	}
	he := domain.HTTPError{Status: resp.StatusCode, Message: msg}
	if resp.StatusCode != http.StatusTooManyRequests {
		return &he
	}

	rl := &domain.RateLimitedError{
		HTTPError:         he,
		RetryAfterSeconds: ceilPositive(body.RetryAfterSeconds),
		RetryAfterMinutes: ceilPositive(body.RetryAfterMinutes),
	}
	if rl.RetryAfterSeconds == 0 && rl.RetryAfterMinutes == 0 {
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
			rl.RetryAfterSeconds = secs
		}
	}
	return rl
}

func firstString(raws ...json.RawMessage) string {
	for _, raw := range raws {
		var s string
		if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func ceilPositive(v float64) int {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Ceil(v))
}
