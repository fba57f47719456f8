// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/catalog", "200"))

	RecordAPIRequest("GET", "/api/v1/catalog", "200", 25*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/catalog", "200"))
	if after != before+1 {
		t.Errorf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+1 {
		t.Errorf("expected gauge %v, got %v", start+1, got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("expected gauge %v, got %v", start, got)
	}
}

func TestRecordRankOutcome(t *testing.T) {
	before := testutil.ToFloat64(RankRequestsTotal.WithLabelValues("fallback"))

	RecordRankOutcome("fallback")

	after := testutil.ToFloat64(RankRequestsTotal.WithLabelValues("fallback"))
	if after != before+1 {
		t.Errorf("expected fallback counter to increment, got %v -> %v", before, after)
	}
}
