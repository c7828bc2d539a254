// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package nlac

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/analysis"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/ifeval"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/opro"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/strategy"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// Config configures the unified strategy.
type Config struct {
	// Builder is required.
	Builder *Builder

	// Optimizer is required.
	Optimizer *opro.Optimizer

	// Validator optionally gates the final instruction; its outcome
	// feeds the prediction's confidence and reasoning.
	Validator *ifeval.Validator

	Logger *zap.Logger
}

// Strategy composes retrieval, optimization and validation behind the
// common strategy contract.
type Strategy struct {
	builder   *Builder
	optimizer *opro.Optimizer
	validator *ifeval.Validator
	logger    *zap.Logger
}

// New creates the unified strategy.
func New(cfg Config) *Strategy {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Logger()
	}
	return &Strategy{
		builder:   cfg.Builder,
		optimizer: cfg.Optimizer,
		validator: cfg.Validator,
		logger:    logger,
	}
}

// Name implements strategy.Strategy.
func (s *Strategy) Name() string { return "nlac" }

// Improve classifies the request, builds a prompt object, optimizes it
// and maps the optimizer response into a prediction. A mid-run
// retrieval failure degrades the result rather than failing it; the
// knn_degraded flag carries it out to the response.
func (s *Strategy) Improve(ctx context.Context, req strategy.Request) (result.Result[types.Prediction], error) {
	intent := analysis.ClassifyIntent(req.Idea, req.Context)
	complexity := analysis.AnalyzeComplexity(req.Idea, req.Context)

	obj, knnFailure, err := s.builder.Build(ctx, BuildRequest{
		Idea:       req.Idea,
		Context:    req.Context,
		Intent:     intent,
		Complexity: complexity,
		Guardrails: req.Guardrails,
	})
	if err != nil {
		return failureOrCancellation(err)
	}

	resp, err := s.optimizer.RunLoop(ctx, obj, knnFailure)
	if err != nil {
		return failureOrCancellation(err)
	}

	framework := "decomposition"
	if complexity == types.ComplexitySimple {
		framework = "chain-of-thought"
	}

	confidence := resp.FinalScore
	reasoning := fmt.Sprintf("optimized in %d iteration(s)", resp.IterationCount)
	if resp.EarlyStopped {
		reasoning += ", early stop"
	}
	if s.validator != nil {
		gate := s.validator.Validate(resp.FinalInstruction)
		confidence = (confidence + gate.Score) / 2
		reasoning += fmt.Sprintf("; validation score %.2f", gate.Score)
		if !gate.Passed {
			s.logger.Warn("optimized prompt failed validation gate",
				zap.String("prompt_id", resp.PromptID),
				zap.Float64("score", gate.Score))
		}
	}
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	res := result.Ok(types.Prediction{
		ImprovedPrompt: resp.FinalInstruction,
		Role:           obj.MetaString("role"),
		Directive:      fmt.Sprintf("%s + %s", obj.MetaString("strategy"), intent),
		Framework:      framework,
		Guardrails:     guardrailsFromConstraints(obj.Constraints),
		Reasoning:      reasoning,
		Confidence:     confidence,
	})
	if resp.KNNFailure != nil && resp.KNNFailure.FailureCount > 0 {
		res = res.WithFlag(strategy.FlagKNNDegraded)
	}
	return res, nil
}

// failureOrCancellation wraps a build or optimize error: domain errors
// become failed results, cancellation stays a plain error.
func failureOrCancellation(err error) (result.Result[types.Prediction], error) {
	if de, ok := result.AsDomainError(err); ok && !result.IsCancellation(err) {
		return result.Err[types.Prediction](de), nil
	}
	return result.Result[types.Prediction]{}, err
}

// guardrailsFromConstraints renders the constraints as the outward
// guardrail list.
func guardrailsFromConstraints(c types.Constraints) []string {
	out := []string{
		fmt.Sprintf("max_tokens=%d", c.MaxTokens),
		fmt.Sprintf("include_examples=%t", c.IncludeExamples),
		fmt.Sprintf("include_explanation=%t", c.IncludeExplanation),
	}
	if c.Format != "" {
		out = append(out, fmt.Sprintf("format=%s", c.Format))
	}
	return out
}
