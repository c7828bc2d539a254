// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package strategy

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/analysis"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// Routing modes.
const (
	ModeLegacy = "legacy"
	ModeNLaC   = "nlac"
)

// Degradation flag names. The first two are set during selector
// construction; FlagKNNDegraded is set per request when exemplar
// retrieval fails mid-run.
const (
	FlagKNNDisabled     = "knn_disabled"
	FlagComplexDisabled = "complex_strategy_disabled"
	FlagKNNDegraded     = "knn_degraded"
)

// Builder constructs a strategy dependency during selector
// initialization. A non-cancellation failure disables the dependency
// and sets a degradation flag instead of aborting construction.
type Builder func(ctx context.Context) (Strategy, error)

// SelectorConfig configures a Selector.
type SelectorConfig struct {
	// Mode is "legacy" (route by complexity) or "nlac" (always the
	// unified strategy). Defaults to legacy.
	Mode string

	// NLaC builds the unified strategy with its retrieval and
	// optimizer dependencies. A failure sets the knn_disabled flag.
	NLaC Builder

	// Complex overrides the built-in complex strategy. A failure sets
	// complex_strategy_disabled; legacy routing then falls back to
	// moderate.
	Complex Builder

	Logger *zap.Logger
}

// Selector routes requests to a strategy. It is built once per process
// and read-only afterwards; degradation flags are written only during
// construction, so concurrent requests may share it without locking.
type Selector struct {
	mode     string
	simple   Strategy
	moderate Strategy
	complex  Strategy
	nlac     Strategy
	flags    map[string]bool
	logger   *zap.Logger
}

// RouteInfo is the classification metadata produced while routing one
// request.
type RouteInfo struct {
	Intent     types.IntentType
	Complexity types.ComplexityLevel
	Strategy   string
}

// NewSelector builds the strategy set, recording degradation flags for
// dependencies that fail to initialize. Cancellation during dependency
// construction aborts and propagates.
func NewSelector(ctx context.Context, cfg SelectorConfig) (*Selector, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Logger()
	}

	mode := cfg.Mode
	if mode == "" {
		mode = ModeLegacy
	}
	if mode != ModeLegacy && mode != ModeNLaC {
		return nil, result.NewValidationError(
			fmt.Sprintf("unrecognized mode %q", mode),
			map[string]any{"mode": mode})
	}

	s := &Selector{
		mode:     mode,
		simple:   NewSimple(),
		moderate: NewModerate(),
		flags:    make(map[string]bool),
		logger:   logger,
	}

	if cfg.Complex != nil {
		built, err := cfg.Complex(ctx)
		switch {
		case err == nil:
			s.complex = built
		case result.IsCancellation(err):
			return nil, err
		default:
			s.flags[FlagComplexDisabled] = true
			logger.Warn("complex strategy disabled",
				zap.Error(err))
		}
	} else {
		s.complex = NewComplex()
	}

	if cfg.NLaC != nil {
		built, err := cfg.NLaC(ctx)
		switch {
		case err == nil:
			s.nlac = built
		case result.IsCancellation(err):
			return nil, err
		default:
			s.flags[FlagKNNDisabled] = true
			logger.Warn("unified strategy retrieval disabled",
				zap.Error(err))
		}
	}

	logger.Info("strategy selector ready",
		zap.String("mode", mode),
		zap.Strings("degradation_flags", s.DegradationFlags()))
	return s, nil
}

// Mode returns the routing mode.
func (s *Selector) Mode() string { return s.mode }

// Flag reports a single degradation flag.
func (s *Selector) Flag(name string) bool { return s.flags[name] }

// DegradationFlags returns the set flags in sorted order for response
// payloads.
func (s *Selector) DegradationFlags() []string {
	out := make([]string, 0, len(s.flags))
	for name, set := range s.flags {
		if set {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Select returns the strategy for the given complexity. In nlac mode
// the complexity only affects metadata, never routing.
func (s *Selector) Select(complexity types.ComplexityLevel) (Strategy, error) {
	return s.SelectWithMode(s.mode, complexity)
}

// SelectWithMode is Select with a per-request mode override. An empty
// mode uses the selector's configured mode.
func (s *Selector) SelectWithMode(mode string, complexity types.ComplexityLevel) (Strategy, error) {
	if mode == "" {
		mode = s.mode
	}
	if mode != ModeLegacy && mode != ModeNLaC {
		return nil, result.NewValidationError(
			fmt.Sprintf("unrecognized mode %q", mode),
			map[string]any{"mode": mode})
	}
	if mode == ModeNLaC {
		if s.nlac == nil {
			return nil, result.NewLLMError(result.CodeLLMProviderUnavailable,
				"unified strategy unavailable", nil, "", "", nil)
		}
		return s.nlac, nil
	}

	switch complexity {
	case types.ComplexitySimple:
		return s.simple, nil
	case types.ComplexityModerate:
		return s.moderate, nil
	case types.ComplexityComplex:
		if s.complex == nil {
			return s.moderate, nil
		}
		return s.complex, nil
	default:
		return nil, result.NewValidationError(
			fmt.Sprintf("unrecognized complexity %q", complexity), nil)
	}
}

// Improve classifies the request, routes it and runs the chosen
// strategy. The selector holds no per-request state. Domain failures
// and degradation flags ride the Result; only cancellation comes back
// as a plain error.
func (s *Selector) Improve(ctx context.Context, req Request) (result.Result[types.Prediction], RouteInfo, error) {
	return s.ImproveWithMode(ctx, "", req)
}

// ImproveWithMode is Improve with a per-request mode override. The
// selector's construction-time flags are folded into a successful
// result alongside any flags the strategy set for this run.
func (s *Selector) ImproveWithMode(ctx context.Context, mode string, req Request) (result.Result[types.Prediction], RouteInfo, error) {
	info := RouteInfo{
		Intent:     analysis.ClassifyIntent(req.Idea, req.Context),
		Complexity: analysis.AnalyzeComplexity(req.Idea, req.Context),
	}

	chosen, err := s.SelectWithMode(mode, info.Complexity)
	if err != nil {
		if de, ok := result.AsDomainError(err); ok {
			return result.Err[types.Prediction](de), info, nil
		}
		return result.Result[types.Prediction]{}, info, err
	}
	info.Strategy = chosen.Name()

	res, err := chosen.Improve(ctx, req)
	if err != nil {
		return result.Result[types.Prediction]{}, info, err
	}
	if res.IsSuccess() {
		for _, name := range s.DegradationFlags() {
			res = res.WithFlag(name)
		}
	}
	return res, info, nil
}
