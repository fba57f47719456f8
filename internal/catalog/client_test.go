// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(url string, attempts int) *Client {
	return NewClient(ClientOptions{
		URL:                  url,
		FetchTimeout:         2 * time.Second,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     5 * time.Millisecond,
		RetryMaxAttempts:     attempts,
	})
}

func TestClientFetchArrayShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name_en":"Cedar Noir","brand":"Atelier","gender":"unisex"}]`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, 1).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 || got[0].NameEN != "Cedar Noir" {
		t.Errorf("Fetch() = %+v, want one candidate named Cedar Noir", got)
	}
}

func TestClientFetchEnvelopeShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"perfumes":[{"id":7,"name_fa":"گل سرخ","name_en":"Rose Dawn","brand":"Maison","gender":"female"}]}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, 1).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("Fetch() = %+v, want one candidate with id 7", got)
	}
	if got[0].DisplayName() != "گل سرخ" {
		t.Errorf("DisplayName() = %q, want the Persian name", got[0].DisplayName())
	}
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"id":1}]`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, 3).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v after retries", err)
	}
	if len(got) != 1 {
		t.Errorf("Fetch() returned %d candidates, want 1", len(got))
	}
	if calls.Load() != 3 {
		t.Errorf("upstream saw %d calls, want 3", calls.Load())
	}
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL, 3).Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() = nil error, want failure after exhausted retries")
	}
	if calls.Load() != 3 {
		t.Errorf("upstream saw %d calls, want 3", calls.Load())
	}
}

func TestClientRejectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"perfumes": "not a list"`))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL, 1).Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() = nil error for malformed body")
	}
}

func TestCandidateNotesMergesAndDeduplicates(t *testing.T) {
	c := Candidate{
		NotesTop:    []string{"Bergamot", "lemon"},
		NotesMiddle: []string{"rose"},
		NotesBase:   []string{"musk", "Rose"},
		AllNotes:    []string{"bergamot", "oud", " "},
	}
	want := []string{"bergamot", "lemon", "rose", "musk", "oud"}
	got := c.Notes()
	if len(got) != len(want) {
		t.Fatalf("Notes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Notes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCandidateDisplayNameFallback(t *testing.T) {
	tests := []struct {
		c    Candidate
		want string
	}{
		{Candidate{NameFA: "فا", NameEN: "en", Name: "legacy"}, "فا"},
		{Candidate{NameEN: "en", Name: "legacy"}, "en"},
		{Candidate{Name: "legacy"}, "legacy"},
	}
	for _, tt := range tests {
		if got := tt.c.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}
