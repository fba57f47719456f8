// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

// Package rank implements the recommendation pipeline: a heuristic
// pre-filter over the catalog, an external re-ranking call, a deterministic
// baseline fallback, and the orchestrator that chains them.
package rank

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

// Upstream failure classes. The orchestrator converts every one of them
// into the fallback chain; none escape to API consumers except ErrEmptyResult.
var (
	// ErrUpstreamTimeout marks a rerank or baseline call that exceeded
	// its deadline.
	ErrUpstreamTimeout = errors.New("upstream call timed out")

	// ErrUpstreamRejected marks a non-success response from an upstream
	// service, including calls refused by an open circuit breaker.
	ErrUpstreamRejected = errors.New("upstream call rejected")

	// ErrUnparsableResponse marks an upstream body that does not match
	// the expected shape. It is never partially trusted.
	ErrUnparsableResponse = errors.New("upstream response unparsable")

	// ErrEmptyResult is the single user-facing ranking failure: both the
	// rerank and baseline stages failed or produced nothing usable.
	ErrEmptyResult = errors.New("no recommendations available")
)

// FailureReason labels a classified failure for metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, ErrUnparsableResponse):
		return "unparsable"
	default:
		return "rejected"
	}
}

// classifyCallError maps a transport-level error onto the failure taxonomy.
func classifyCallError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrUpstreamRejected, err)
	case errors.Is(err, ErrUpstreamTimeout),
		errors.Is(err, ErrUpstreamRejected),
		errors.Is(err, ErrUnparsableResponse):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUpstreamRejected, err)
	}
}
