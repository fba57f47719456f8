// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package rank

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/scentwise/scentwise/internal/catalog"
	"github.com/scentwise/scentwise/internal/logging"
	"github.com/scentwise/scentwise/internal/metrics"
	"github.com/scentwise/scentwise/internal/quiz"
)

// maxReasons caps the per-candidate reason list from the re-rank provider.
const maxReasons = 4

// maxReasonLen truncates individual reason strings to presentation length.
const maxReasonLen = 160

// Ranking is one validated entry from the external re-rank provider.
type Ranking struct {
	ID              int64    `json:"id"`
	MatchPercentage int      `json:"match_percentage"`
	Reasons         []string `json:"reasons,omitempty"`
}

// Gateway calls the external re-ranking provider. One outbound call per
// Rerank invocation; failures are classified, never retried here. A rate
// limiter smooths the outbound call rate and a circuit breaker stops
// hammering a provider that is already failing.
type Gateway struct {
	url     string
	apiKey  string
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]Ranking]
}

// GatewayOptions configure the rerank gateway.
type GatewayOptions struct {
	URL     string
	APIKey  string
	Timeout time.Duration

	RatePerSecond float64
	RateBurst     int

	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// NewGateway builds a rerank gateway.
func NewGateway(opts GatewayOptions) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 2
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 4
	}
	if opts.BreakerMaxRequests == 0 {
		opts.BreakerMaxRequests = 3
	}
	if opts.BreakerInterval <= 0 {
		opts.BreakerInterval = time.Minute
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 2 * time.Minute
	}

	settings := gobreaker.Settings{
		Name:        "rerank",
		MaxRequests: opts.BreakerMaxRequests,
		Interval:    opts.BreakerInterval,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &Gateway{
		url:     opts.URL,
		apiKey:  opts.APIKey,
		client:  &http.Client{Timeout: opts.Timeout + 5*time.Second},
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RateBurst),
		breaker: gobreaker.NewCircuitBreaker[[]Ranking](settings),
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// rerankRequest is the outbound payload. The shortlist carries enough of
// each candidate for the provider to reason about, not the full record.
type rerankRequest struct {
	Answers   quiz.QuestionnaireAnswers `json:"answers"`
	Shortlist []shortlistEntry          `json:"shortlist"`
}

type shortlistEntry struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Brand     string   `json:"brand"`
	Gender    string   `json:"gender,omitempty"`
	Family    string   `json:"family,omitempty"`
	Character string   `json:"character,omitempty"`
	Notes     []string `json:"notes,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type rerankResponse struct {
	Rankings []struct {
		ID              int64    `json:"id"`
		MatchPercentage float64  `json:"match_percentage"`
		Reasons         []string `json:"reasons"`
	} `json:"rankings"`
}

// Rerank sends the shortlist for external ranking and returns validated
// rankings in provider order. Every failure is one of the typed upstream
// errors.
func (g *Gateway) Rerank(ctx context.Context, answers quiz.QuestionnaireAnswers, shortlist []catalog.Candidate) ([]Ranking, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, classifyCallError(err)
	}

	start := time.Now()
	rankings, err := g.breaker.Execute(func() ([]Ranking, error) {
		return g.call(ctx, answers, shortlist)
	})
	metrics.RerankCallDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		err = classifyCallError(err)
		metrics.RerankFailures.WithLabelValues(FailureReason(err)).Inc()
		return nil, err
	}
	return rankings, nil
}

func (g *Gateway) call(ctx context.Context, answers quiz.QuestionnaireAnswers, shortlist []catalog.Candidate) ([]Ranking, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload := rerankRequest{
		Answers:   answers,
		Shortlist: make([]shortlistEntry, 0, len(shortlist)),
	}
	for _, c := range shortlist {
		payload.Shortlist = append(payload.Shortlist, shortlistEntry{
			ID:        c.ID,
			Name:      c.DisplayName(),
			Brand:     c.Brand,
			Gender:    c.Gender,
			Family:    c.Family,
			Character: c.Character,
			Notes:     c.Notes(),
			Tags:      c.Tags,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode rerank request: %w", ErrUpstreamRejected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build rerank request: %w", ErrUpstreamRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstreamRejected, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamTimeout, resp.StatusCode)
	default:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamRejected, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read rerank response: %w", ErrUnparsableResponse, err)
	}
	var decoded rerankResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsableResponse, err)
	}

	rankings := make([]Ranking, 0, len(decoded.Rankings))
	for _, r := range decoded.Rankings {
		rankings = append(rankings, Ranking{
			ID:              r.ID,
			MatchPercentage: clampPercentage(r.MatchPercentage),
			Reasons:         sanitizeReasons(r.Reasons),
		})
	}
	return rankings, nil
}

// clampPercentage forces a provider score into [0,100].
func clampPercentage(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// sanitizeReasons caps the list at maxReasons and truncates long entries.
func sanitizeReasons(reasons []string) []string {
	if len(reasons) == 0 {
		return nil
	}
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if len(r) > maxReasonLen {
			r = r[:maxReasonLen]
		}
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
