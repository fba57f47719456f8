// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 0")
	}

	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 70000")
	}
}

func TestValidateRejectsMissingCatalogURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Catalog.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty catalog.url")
	}
}

func TestValidateRejectsBadURLScheme(t *testing.T) {
	cfg := defaultConfig()
	cfg.Catalog.URL = "ftp://example.com/catalog"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for ftp scheme")
	}
}

func TestValidateRejectsInvertedNoteWeights(t *testing.T) {
	cfg := defaultConfig()
	cfg.Ranking.LikedNoteWeight = 5
	cfg.Ranking.DislikedNoteWeight = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when liked weight exceeds disliked weight")
	}
}

func TestValidateRejectsFlatShortlistSmallerThanShortlist(t *testing.T) {
	cfg := defaultConfig()
	cfg.Ranking.ShortlistSize = 50
	cfg.Ranking.ShortlistSizeFlat = 10
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when flat shortlist cap is below the normal cap")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SCENTWISE_SERVER_PORT", "server.port"},
		{"SCENTWISE_CATALOG_CACHE_TTL", "catalog.cache_ttl"},
		{"SCENTWISE_RERANK_BREAKER_TIMEOUT", "rerank.breaker_timeout"},
		{"SCENTWISE_LOGGING_LEVEL", "logging.level"},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadWithKoanfDefaults(t *testing.T) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.CacheTTL != 5*time.Minute {
		t.Errorf("expected default cache TTL 5m, got %v", cfg.Catalog.CacheTTL)
	}
	if cfg.Ranking.ShortlistSize != 50 {
		t.Errorf("expected default shortlist size 50, got %d", cfg.Ranking.ShortlistSize)
	}
	if cfg.Ranking.ResultLimit != 6 {
		t.Errorf("expected default result limit 6, got %d", cfg.Ranking.ResultLimit)
	}
}

func TestLoadWithKoanfEnvOverride(t *testing.T) {
	t.Setenv("SCENTWISE_SERVER_PORT", "9090")
	t.Setenv("SCENTWISE_RANKING_SHORTLIST_SIZE", "25")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected env override port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Ranking.ShortlistSize != 25 {
		t.Errorf("expected env override shortlist size 25, got %d", cfg.Ranking.ShortlistSize)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 3000\ncatalog:\n  cache_ttl: 2m\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected file port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.CacheTTL != 2*time.Minute {
		t.Errorf("expected file cache TTL 2m, got %v", cfg.Catalog.CacheTTL)
	}
}

func TestLoadWithKoanfCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("SCENTWISE_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if len(cfg.Server.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.CORSOrigins[0] != "https://a.example" || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.Server.CORSOrigins)
	}
}
