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

	"github.com/scentwise/scentwise/internal/catalog"
	"github.com/scentwise/scentwise/internal/metrics"
	"github.com/scentwise/scentwise/internal/quiz"
)

// BaselineResult is one entry from the deterministic fallback ranker: a
// full candidate record plus its 0..100 match percentage.
type BaselineResult struct {
	Candidate       catalog.Candidate
	MatchPercentage int
}

// Baseline calls the deterministic fallback scoring endpoint. It only runs
// when the re-rank provider has already failed, so its own failures end the
// pipeline.
type Baseline struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

// NewBaseline builds a baseline client.
func NewBaseline(url string, timeout time.Duration) *Baseline {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Baseline{
		url:     url,
		client:  &http.Client{Timeout: timeout + 5*time.Second},
		timeout: timeout,
	}
}

type baselineResponse struct {
	Results []baselineRecord `json:"results"`
}

// baselineRecord embeds the candidate fields inline next to the raw score.
type baselineRecord struct {
	catalog.Candidate
	Score float64 `json:"score"`
}

// Rank fetches baseline rankings for an answer profile. The upstream 0..1
// score is scaled to a 0..100 percentage; ordering follows the upstream
// response. Failures are typed and never retried.
func (b *Baseline) Rank(ctx context.Context, answers quiz.QuestionnaireAnswers) ([]BaselineResult, error) {
	results, err := b.call(ctx, answers)
	if err != nil {
		err = classifyCallError(err)
		metrics.BaselineFailures.WithLabelValues(FailureReason(err)).Inc()
		return nil, err
	}
	return results, nil
}

func (b *Baseline) call(ctx context.Context, answers quiz.QuestionnaireAnswers) ([]BaselineResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{"answers": answers})
	if err != nil {
		return nil, fmt.Errorf("%w: encode baseline request: %w", ErrUpstreamRejected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build baseline request: %w", ErrUpstreamRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstreamRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamRejected, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read baseline response: %w", ErrUnparsableResponse, err)
	}
	var decoded baselineResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsableResponse, err)
	}

	results := make([]BaselineResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, BaselineResult{
			Candidate:       r.Candidate,
			MatchPercentage: scaleScore(r.Score),
		})
	}
	return results, nil
}

// scaleScore converts a 0..1 score into a 0..100 percentage, clamping
// out-of-range input first.
func scaleScore(score float64) int {
	if math.IsNaN(score) || score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return int(math.Round(score * 100))
}
