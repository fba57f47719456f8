// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package rank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scentwise/scentwise/internal/quiz"
)

func TestBaselineScalesScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"id":1,"name_en":"Oud Royale","brand":"Maison","gender":"unisex","score":0.825},
			{"id":2,"name_en":"Iris Pale","brand":"Atelier","gender":"female","score":1.7},
			{"id":3,"name_en":"Salt Air","brand":"Atelier","gender":"unisex","score":-0.2}
		]}`))
	}))
	defer srv.Close()

	got, err := NewBaseline(srv.URL, time.Second).Rank(context.Background(), quiz.QuestionnaireAnswers{})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Rank() returned %d results, want 3", len(got))
	}
	if got[0].MatchPercentage != 83 {
		t.Errorf("score 0.825 scaled to %d, want 83", got[0].MatchPercentage)
	}
	if got[1].MatchPercentage != 100 {
		t.Errorf("score 1.7 clamped to %d, want 100", got[1].MatchPercentage)
	}
	if got[2].MatchPercentage != 0 {
		t.Errorf("score -0.2 clamped to %d, want 0", got[2].MatchPercentage)
	}
	if got[0].Candidate.NameEN != "Oud Royale" {
		t.Errorf("candidate record = %+v, want the full upstream record", got[0].Candidate)
	}
}

func TestBaselineTimeoutIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewBaseline(srv.URL, 20*time.Millisecond).Rank(context.Background(), quiz.QuestionnaireAnswers{})
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Errorf("Rank() error = %v, want ErrUpstreamTimeout", err)
	}
}

func TestBaselineRejectionIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewBaseline(srv.URL, time.Second).Rank(context.Background(), quiz.QuestionnaireAnswers{})
	if !errors.Is(err, ErrUpstreamRejected) {
		t.Errorf("Rank() error = %v, want ErrUpstreamRejected", err)
	}
}

func TestBaselineUnparsableIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewBaseline(srv.URL, time.Second).Rank(context.Background(), quiz.QuestionnaireAnswers{})
	if !errors.Is(err, ErrUnparsableResponse) {
		t.Errorf("Rank() error = %v, want ErrUnparsableResponse", err)
	}
}

func TestScaleScore(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{1, 100},
		{0.5, 50},
		{0.004, 0},
		{0.006, 1},
		{2.5, 100},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := scaleScore(tt.in); got != tt.want {
			t.Errorf("scaleScore(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
