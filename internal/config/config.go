// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

// Package config provides layered configuration for Scentwise using Koanf v2.
//
// Precedence (highest wins): environment variables > YAML config file >
// built-in defaults. See LoadWithKoanf for the loading mechanics.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration for the Scentwise server.
type Config struct {
	Server   ServerConfig   `koanf:"server" json:"server"`
	Logging  LoggingConfig  `koanf:"logging" json:"logging"`
	Catalog  CatalogConfig  `koanf:"catalog" json:"catalog"`
	Rerank   RerankConfig   `koanf:"rerank" json:"rerank"`
	Baseline BaselineConfig `koanf:"baseline" json:"baseline"`
	Ranking  RankingConfig  `koanf:"ranking" json:"ranking"`
	Session  SessionConfig  `koanf:"session" json:"session"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Empty binds all interfaces.
	Host string `koanf:"host" json:"host"`

	// Port is the HTTP listen port.
	Port int `koanf:"port" json:"port"`

	// ReadTimeout bounds reading the request including the body.
	ReadTimeout time.Duration `koanf:"read_timeout" json:"read_timeout"`

	// WriteTimeout bounds writing the response. Must exceed the rerank
	// deadline or long-running recommend calls are cut off mid-flight.
	WriteTimeout time.Duration `koanf:"write_timeout" json:"write_timeout"`

	// ShutdownTimeout is how long graceful shutdown waits for in-flight
	// requests before forcing exit.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`

	// CORSOrigins lists allowed CORS origins. "*" allows any origin.
	CORSOrigins []string `koanf:"cors_origins" json:"cors_origins"`

	// RateLimitPerMinute is the per-IP request budget on the API group.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" json:"rate_limit_per_minute"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `koanf:"level" json:"level"`

	// Format is json or console.
	Format string `koanf:"format" json:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller" json:"caller"`
}

// CatalogConfig holds settings for the upstream catalog source and its cache.
type CatalogConfig struct {
	// URL is the catalog endpoint returning the full candidate list.
	URL string `koanf:"url" json:"url"`

	// FetchTimeout bounds a single catalog fetch attempt.
	FetchTimeout time.Duration `koanf:"fetch_timeout" json:"fetch_timeout"`

	// CacheTTL is how long a fetched snapshot is served without refetching.
	CacheTTL time.Duration `koanf:"cache_ttl" json:"cache_ttl"`

	// RetryInitialInterval is the first backoff delay between fetch attempts.
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval" json:"retry_initial_interval"`

	// RetryMaxInterval caps the backoff delay.
	RetryMaxInterval time.Duration `koanf:"retry_max_interval" json:"retry_max_interval"`

	// RetryMaxAttempts bounds fetch attempts before surfacing the error.
	RetryMaxAttempts int `koanf:"retry_max_attempts" json:"retry_max_attempts"`

	// WarmInterval is how often the background warmer refreshes the
	// snapshot. Zero disables background warming (cache still fetches on
	// demand).
	WarmInterval time.Duration `koanf:"warm_interval" json:"warm_interval"`
}

// RerankConfig holds settings for the external LLM-backed reranking service.
type RerankConfig struct {
	// URL is the rerank endpoint.
	URL string `koanf:"url" json:"url"`

	// APIKey authenticates against the rerank provider. Optional.
	APIKey string `koanf:"api_key" json:"-"`

	// Timeout is the abort deadline for one rerank call. The upstream is an
	// LLM; deadlines on the order of minutes are expected.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`

	// RatePerSecond limits outbound rerank calls (client-side).
	RatePerSecond float64 `koanf:"rate_per_second" json:"rate_per_second"`

	// RateBurst is the burst size for the outbound rate limiter.
	RateBurst int `koanf:"rate_burst" json:"rate_burst"`

	// BreakerMaxRequests is the half-open request allowance of the circuit
	// breaker guarding the rerank endpoint.
	BreakerMaxRequests uint32 `koanf:"breaker_max_requests" json:"breaker_max_requests"`

	// BreakerInterval is the closed-state count reset interval.
	BreakerInterval time.Duration `koanf:"breaker_interval" json:"breaker_interval"`

	// BreakerTimeout is the open-state duration before probing again.
	BreakerTimeout time.Duration `koanf:"breaker_timeout" json:"breaker_timeout"`
}

// BaselineConfig holds settings for the deterministic fallback ranking service.
type BaselineConfig struct {
	// URL is the baseline scoring endpoint.
	URL string `koanf:"url" json:"url"`

	// Timeout is the abort deadline for one baseline call, independent of
	// the rerank deadline.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// RankingConfig holds the tunable parameters of the local heuristic scorer
// and the orchestrator.
type RankingConfig struct {
	// ShortlistSize is the candidate cap passed to the rerank call.
	ShortlistSize int `koanf:"shortlist_size" json:"shortlist_size"`

	// ShortlistSizeFlat is the widened cap used when heuristic scoring
	// carried no signal (every candidate scored the same).
	ShortlistSizeFlat int `koanf:"shortlist_size_flat" json:"shortlist_size_flat"`

	// ResultLimit caps the ranked list returned to the caller.
	ResultLimit int `koanf:"result_limit" json:"result_limit"`

	// LikedNoteWeight is added per liked note present on a candidate.
	LikedNoteWeight int `koanf:"liked_note_weight" json:"liked_note_weight"`

	// DislikedNoteWeight is subtracted per disliked note present. Kept
	// larger than LikedNoteWeight so avoidance dominates attraction.
	DislikedNoteWeight int `koanf:"disliked_note_weight" json:"disliked_note_weight"`
}

// SessionConfig holds settings for the in-memory interview session store.
type SessionConfig struct {
	// TTL is the idle lifetime of a session before the sweeper removes it.
	TTL time.Duration `koanf:"ttl" json:"ttl"`

	// SweepInterval is how often expired sessions are collected.
	SweepInterval time.Duration `koanf:"sweep_interval" json:"sweep_interval"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "",
			Port:               8080,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       3 * time.Minute,
			ShutdownTimeout:    10 * time.Second,
			CORSOrigins:        []string{"*"},
			RateLimitPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Catalog: CatalogConfig{
			URL:                  "http://localhost:8000/api/perfumes/",
			FetchTimeout:         30 * time.Second,
			CacheTTL:             5 * time.Minute,
			RetryInitialInterval: 500 * time.Millisecond,
			RetryMaxInterval:     5 * time.Second,
			RetryMaxAttempts:     3,
			WarmInterval:         5 * time.Minute,
		},
		Rerank: RerankConfig{
			URL:                "",
			APIKey:             "",
			Timeout:            90 * time.Second,
			RatePerSecond:      2,
			RateBurst:          4,
			BreakerMaxRequests: 3,
			BreakerInterval:    time.Minute,
			BreakerTimeout:     2 * time.Minute,
		},
		Baseline: BaselineConfig{
			URL:     "",
			Timeout: 60 * time.Second,
		},
		Ranking: RankingConfig{
			ShortlistSize:      50,
			ShortlistSizeFlat:  80,
			ResultLimit:        6,
			LikedNoteWeight:    2,
			DislikedNoteWeight: 3,
		},
		Session: SessionConfig{
			TTL:           30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
	}
}

// Validate checks the configuration for invalid or inconsistent values.
// It is called by LoadWithKoanf after all layers are applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	if c.Catalog.URL == "" {
		return fmt.Errorf("catalog.url is required")
	}
	if err := validateURL("catalog.url", c.Catalog.URL); err != nil {
		return err
	}
	if c.Catalog.CacheTTL <= 0 {
		return fmt.Errorf("catalog.cache_ttl must be positive")
	}
	if c.Catalog.RetryMaxAttempts < 1 {
		return fmt.Errorf("catalog.retry_max_attempts must be at least 1")
	}

	if c.Rerank.URL != "" {
		if err := validateURL("rerank.url", c.Rerank.URL); err != nil {
			return err
		}
		if c.Rerank.Timeout <= 0 {
			return fmt.Errorf("rerank.timeout must be positive")
		}
	}
	if c.Baseline.URL != "" {
		if err := validateURL("baseline.url", c.Baseline.URL); err != nil {
			return err
		}
		if c.Baseline.Timeout <= 0 {
			return fmt.Errorf("baseline.timeout must be positive")
		}
	}

	if c.Ranking.ShortlistSize < 1 {
		return fmt.Errorf("ranking.shortlist_size must be at least 1")
	}
	if c.Ranking.ShortlistSizeFlat < c.Ranking.ShortlistSize {
		return fmt.Errorf("ranking.shortlist_size_flat must be >= ranking.shortlist_size")
	}
	if c.Ranking.ResultLimit < 1 {
		return fmt.Errorf("ranking.result_limit must be at least 1")
	}
	if c.Ranking.DislikedNoteWeight < c.Ranking.LikedNoteWeight {
		return fmt.Errorf("ranking.disliked_note_weight must be >= ranking.liked_note_weight (avoidance dominates attraction)")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}

	return nil
}

// validateURL checks that a value parses as an absolute http(s) URL.
func validateURL(field, value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", field)
	}
	return nil
}
