// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/config"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/ifeval"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/knn"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/llm"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/metrics"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/nlac"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/opro"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/server"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/storage"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/strategy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log.SetLogger(logger)

	llmClient := buildLLMClient(cfg.LLM, logger)
	if llmClient == nil {
		logger.Warn("no API key configured, serving in degraded mode")
	}

	validator := ifeval.NewValidator(ifeval.ValidatorConfig{
		CalibrationPath: cfg.Validator.CalibrationPath,
		Logger:          logger,
	})

	optimizer := opro.NewOptimizer(opro.Config{
		Client: llmClient,
		Logger: logger,
	})

	selectorCfg := strategy.SelectorConfig{
		Mode:   cfg.Server.Mode,
		Logger: logger,
	}
	if cfg.Retrieval.CatalogPath != "" {
		selectorCfg.NLaC = nlacBuilder(cfg.Retrieval.CatalogPath, optimizer, validator, logger)
	}

	selector, err := strategy.NewSelector(ctx, selectorCfg)
	if err != nil {
		return fmt.Errorf("building strategy selector: %w", err)
	}

	var store *storage.MetricsStore
	if cfg.Database.Path != "" {
		st, derr := storage.NewMetricsStore(cfg.Database.Path, logger)
		if derr != nil {
			return fmt.Errorf("opening metrics store: %w", derr)
		}
		store = st
		defer func() { _ = store.Close() }()
	}

	srv := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		Selector:  selector,
		Validator: validator,
		Evaluator: metrics.NewEvaluator(logger),
		Store:     store,
		LLM:       llmClient,
		Logger:    logger,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "context canceled"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildLLMClient returns nil when no API key is available; the server
// then answers improve requests with a degraded 503.
func buildLLMClient(cfg config.LLMConfig, logger *zap.Logger) llm.Client {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil
	}

	inner := llm.NewAnthropic(llm.AnthropicConfig{
		APIKey:      apiKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	return llm.NewBreaker(inner, llm.BreakerConfig{
		ConsecutiveFailures: uint32(cfg.BreakerFailures),
		OpenTimeout:         time.Duration(cfg.BreakerOpenSeconds) * time.Second,
		Logger:              logger,
	})
}

// nlacBuilder wires catalog retrieval into the unified strategy. A
// catalog load failure disables it with a degradation flag instead of
// aborting startup.
func nlacBuilder(catalogPath string, optimizer *opro.Optimizer, validator *ifeval.Validator, logger *zap.Logger) strategy.Builder {
	return func(ctx context.Context) (strategy.Strategy, error) {
		provider, derr := knn.NewProvider(ctx, knn.Config{
			CatalogPath: catalogPath,
			Logger:      logger,
		})
		if derr != nil {
			return nil, derr
		}
		return nlac.New(nlac.Config{
			Builder:   nlac.NewBuilder(provider, logger),
			Optimizer: optimizer,
			Validator: validator,
			Logger:    logger,
		}), nil
	}
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = level
	return zcfg.Build()
}
