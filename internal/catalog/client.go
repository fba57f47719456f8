// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"

	"github.com/scentwise/scentwise/internal/logging"
	"github.com/scentwise/scentwise/internal/metrics"
)

// Fetcher retrieves the full catalog snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Candidate, error)
}

// Client fetches the catalog over HTTP with exponential-backoff retries.
type Client struct {
	url         string
	httpClient  *http.Client
	maxAttempts int

	retryInitial time.Duration
	retryMax     time.Duration
}

// ClientOptions configure a Client. Zero values fall back to conservative
// defaults.
type ClientOptions struct {
	URL                  string
	FetchTimeout         time.Duration
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMaxAttempts     int
}

// NewClient builds a catalog client.
func NewClient(opts ClientOptions) *Client {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.RetryInitialInterval <= 0 {
		opts.RetryInitialInterval = 500 * time.Millisecond
	}
	if opts.RetryMaxInterval <= 0 {
		opts.RetryMaxInterval = 5 * time.Second
	}
	if opts.RetryMaxAttempts <= 0 {
		opts.RetryMaxAttempts = 3
	}
	return &Client{
		url:          opts.URL,
		httpClient:   &http.Client{Timeout: opts.FetchTimeout},
		maxAttempts:  opts.RetryMaxAttempts,
		retryInitial: opts.RetryInitialInterval,
		retryMax:     opts.RetryMaxInterval,
	}
}

// Fetch retrieves the catalog, retrying transient failures with exponential
// backoff. Context cancellation aborts between attempts.
func (c *Client) Fetch(ctx context.Context) ([]Candidate, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInitial
	bo.MaxInterval = c.retryMax

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		candidates, err := c.fetchOnce(ctx)
		if err == nil {
			return candidates, nil
		}
		lastErr = err
		metrics.CatalogFetchErrors.Inc()
		logging.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", c.maxAttempts).
			Msg("Catalog fetch failed")

		if attempt == c.maxAttempts {
			break
		}
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("catalog fetch failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// catalogEnvelope is the wrapped upstream response shape. Some deployments
// serve a bare JSON array instead; fetchOnce accepts both.
type catalogEnvelope struct {
	Perfumes []Candidate `json:"perfumes"`
}

func (c *Client) fetchOnce(ctx context.Context) ([]Candidate, error) {
	start := time.Now()
	defer func() {
		metrics.CatalogFetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}

	var candidates []Candidate
	if err := json.Unmarshal(body, &candidates); err == nil {
		return candidates, nil
	}
	var envelope catalogEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return envelope.Perfumes, nil
}
