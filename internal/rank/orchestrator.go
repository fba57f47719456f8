// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package rank

import (
	"context"
	"fmt"

	"github.com/scentwise/scentwise/internal/catalog"
	"github.com/scentwise/scentwise/internal/logging"
	"github.com/scentwise/scentwise/internal/metrics"
	"github.com/scentwise/scentwise/internal/quiz"
)

// DefaultResultLimit caps how many ranked candidates a response presents.
const DefaultResultLimit = 6

// CatalogSource supplies the candidate pool.
type CatalogSource interface {
	Get(ctx context.Context) ([]catalog.Candidate, error)
	Stale() []catalog.Candidate
}

// Reranker is the external re-ranking stage.
type Reranker interface {
	Rerank(ctx context.Context, answers quiz.QuestionnaireAnswers, shortlist []catalog.Candidate) ([]Ranking, error)
}

// BaselineRanker is the deterministic fallback stage.
type BaselineRanker interface {
	Rank(ctx context.Context, answers quiz.QuestionnaireAnswers) ([]BaselineResult, error)
}

// RankedCandidate is one presentation-ready recommendation: the full
// catalog record plus its match percentage and reasons.
type RankedCandidate struct {
	catalog.Candidate
	MatchPercentage int      `json:"match_percentage"`
	Reasons         []string `json:"reasons"`
}

// Result is a completed ranking. Fallback marks results produced by the
// baseline stage instead of the re-rank provider.
type Result struct {
	Items    []RankedCandidate `json:"items"`
	Fallback bool              `json:"fallback"`
}

// Orchestrator chains the pipeline stages: catalog pool, heuristic
// shortlist, external re-rank, baseline fallback. Every upstream failure is
// absorbed here; callers see either a usable Result or ErrEmptyResult.
type Orchestrator struct {
	catalog  CatalogSource
	scorer   *Scorer
	rerank   Reranker
	baseline BaselineRanker
	limit    int
}

// NewOrchestrator wires the pipeline. A non-positive limit falls back to
// DefaultResultLimit.
func NewOrchestrator(source CatalogSource, scorer *Scorer, rerank Reranker, baseline BaselineRanker, limit int) *Orchestrator {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	return &Orchestrator{
		catalog:  source,
		scorer:   scorer,
		rerank:   rerank,
		baseline: baseline,
		limit:    limit,
	}
}

// Rank produces the final ordered recommendations for an answer profile.
// Output order follows the upstream ranking (re-rank or baseline); the
// heuristic score is only a pre-filter and never decides the final order.
func (o *Orchestrator) Rank(ctx context.Context, answers quiz.QuestionnaireAnswers) (Result, error) {
	answers = quiz.Canonicalize(answers)

	pool, err := o.catalog.Get(ctx)
	if err != nil {
		// A stale snapshot still beats no recommendations.
		pool = o.catalog.Stale()
		if len(pool) == 0 {
			metrics.RecordRankOutcome("empty")
			return Result{}, fmt.Errorf("%w: catalog unavailable: %w", ErrEmptyResult, err)
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("Catalog refresh failed, ranking against stale snapshot")
	}

	byID := make(map[int64]catalog.Candidate, len(pool))
	for _, c := range pool {
		byID[c.ID] = c
	}

	shortlist := o.scorer.BuildShortlist(answers, pool)

	rankings, rerankErr := o.rerank.Rerank(ctx, answers, shortlist)
	if rerankErr == nil {
		items := o.mergeRankings(rankings, byID)
		if len(items) > 0 {
			metrics.RecordRankOutcome("rerank")
			return Result{Items: items}, nil
		}
		rerankErr = fmt.Errorf("%w: rerank returned no usable rankings", ErrUpstreamRejected)
	}
	logging.Ctx(ctx).Warn().Err(rerankErr).Msg("Rerank stage failed, falling back to baseline")

	results, baselineErr := o.baseline.Rank(ctx, answers)
	if baselineErr != nil {
		metrics.RecordRankOutcome("empty")
		return Result{}, fmt.Errorf("%w: rerank: %w; baseline: %w", ErrEmptyResult, rerankErr, baselineErr)
	}

	items := make([]RankedCandidate, 0, o.limit)
	for _, r := range results {
		if len(items) == o.limit {
			break
		}
		items = append(items, RankedCandidate{
			Candidate:       r.Candidate,
			MatchPercentage: r.MatchPercentage,
			Reasons:         []string{},
		})
	}
	if len(items) == 0 {
		metrics.RecordRankOutcome("empty")
		return Result{}, fmt.Errorf("%w: baseline returned no results", ErrEmptyResult)
	}

	metrics.RecordRankOutcome("baseline")
	return Result{Items: items, Fallback: true}, nil
}

// mergeRankings maps provider rankings back onto full catalog records,
// dropping entries whose id is unknown, preserving provider order, and
// truncating to the presentation limit.
func (o *Orchestrator) mergeRankings(rankings []Ranking, byID map[int64]catalog.Candidate) []RankedCandidate {
	items := make([]RankedCandidate, 0, o.limit)
	for _, r := range rankings {
		if len(items) == o.limit {
			break
		}
		c, ok := byID[r.ID]
		if !ok {
			continue
		}
		reasons := r.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		items = append(items, RankedCandidate{
			Candidate:       c,
			MatchPercentage: r.MatchPercentage,
			Reasons:         reasons,
		})
	}
	return items
}
