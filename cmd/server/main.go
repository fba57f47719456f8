// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

// Command server runs the Scentwise recommendation service: the interview
// session API, the ranking pipeline, and the catalog cache, all under a
// suture supervision tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/scentwise/scentwise/internal/api"
	"github.com/scentwise/scentwise/internal/catalog"
	"github.com/scentwise/scentwise/internal/config"
	"github.com/scentwise/scentwise/internal/logging"
	"github.com/scentwise/scentwise/internal/quiz"
	"github.com/scentwise/scentwise/internal/rank"
	"github.com/scentwise/scentwise/internal/supervisor"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().Str("version", version).Msg("Starting Scentwise")

	// Ranking pipeline.
	client := catalog.NewClient(catalog.ClientOptions{
		URL:                  cfg.Catalog.URL,
		FetchTimeout:         cfg.Catalog.FetchTimeout,
		RetryInitialInterval: cfg.Catalog.RetryInitialInterval,
		RetryMaxInterval:     cfg.Catalog.RetryMaxInterval,
		RetryMaxAttempts:     cfg.Catalog.RetryMaxAttempts,
	})
	cache := catalog.NewCache(client, cfg.Catalog.CacheTTL)

	scorer := rank.NewScorer(rank.ScorerOptions{
		LikedNoteWeight:    cfg.Ranking.LikedNoteWeight,
		DislikedNoteWeight: cfg.Ranking.DislikedNoteWeight,
		ShortlistSize:      cfg.Ranking.ShortlistSize,
		ShortlistSizeFlat:  cfg.Ranking.ShortlistSizeFlat,
	})
	gateway := rank.NewGateway(rank.GatewayOptions{
		URL:                cfg.Rerank.URL,
		APIKey:             cfg.Rerank.APIKey,
		Timeout:            cfg.Rerank.Timeout,
		RatePerSecond:      cfg.Rerank.RatePerSecond,
		RateBurst:          cfg.Rerank.RateBurst,
		BreakerMaxRequests: cfg.Rerank.BreakerMaxRequests,
		BreakerInterval:    cfg.Rerank.BreakerInterval,
		BreakerTimeout:     cfg.Rerank.BreakerTimeout,
	})
	baseline := rank.NewBaseline(cfg.Baseline.URL, cfg.Baseline.Timeout)
	orchestrator := rank.NewOrchestrator(cache, scorer, gateway, baseline, cfg.Ranking.ResultLimit)

	// Interview sessions.
	sessions := quiz.NewSessionStore(cfg.Session.TTL, cfg.Session.SweepInterval)

	// HTTP surface.
	handlers := api.NewHandlers(sessions, orchestrator, cache, version)
	router := api.NewRouter(cfg.Server, handlers)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Supervision tree: background workers and the API restart
	// independently of each other.
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(slog.Default(), treeCfg)
	tree.AddBackgroundService(catalog.NewWarmer(cache, cfg.Catalog.WarmInterval))
	tree.AddBackgroundService(sessions)
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("supervisor: %w", err)
		}
		return nil
	}

	// Wait for the tree to wind down after cancellation.
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
			for _, svc := range unstopped {
				logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
			}
		}
		return fmt.Errorf("shutdown: %w", err)
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}
