// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
)

// BreakerConfig tunes the circuit breaker around a Client.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker. Defaults to 5.
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before probing
	// again. Defaults to 30 seconds.
	OpenTimeout time.Duration

	Logger *zap.Logger
}

// Breaker wraps a Client with a circuit breaker so a failing provider
// sheds load fast instead of stacking up timed-out calls.
type Breaker struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker
}

// NewBreaker decorates the client with circuit breaking.
func NewBreaker(inner Client, cfg BreakerConfig) *Breaker {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Logger()
	}
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout == 0 {
		openTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    inner.Provider(),
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("llm circuit breaker state change",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Breaker{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Provider implements Client.
func (b *Breaker) Provider() string { return b.inner.Provider() }

// Model implements Client.
func (b *Breaker) Model() string { return b.inner.Model() }

// Generate implements Client. While the breaker is open, calls fail
// immediately with gobreaker.ErrOpenState.
func (b *Breaker) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := b.breaker.Execute(func() (any, error) {
		return b.inner.Generate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// IsBreakerOpen reports whether the error means the breaker rejected
// the call without reaching the provider.
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}
