// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package opro iteratively refines a prompt object by scoring
// candidates against its constraints, feeding failures back into the
// next refinement, and stopping early once a candidate is clean.
package opro

import (
	"context"

	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/llm"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

const (
	// MaxIterations bounds the refinement loop.
	MaxIterations = 3
	// QualityThreshold is the score at which the loop stops early.
	QualityThreshold = 1.0
)

// Config configures an Optimizer.
type Config struct {
	// Client is optional; without one, refinement is deterministic.
	Client llm.Client

	// MaxIterations defaults to MaxIterations.
	MaxIterations int

	// QualityThreshold defaults to QualityThreshold.
	QualityThreshold float64

	Logger *zap.Logger
}

// Optimizer runs the refinement loop. It is stateless across runs and
// safe for concurrent use.
type Optimizer struct {
	client    llm.Client
	maxIters  int
	threshold float64
	mapper    *result.Mapper
	logger    *zap.Logger
}

// NewOptimizer creates an optimizer.
func NewOptimizer(cfg Config) *Optimizer {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Logger()
	}
	maxIters := cfg.MaxIterations
	if maxIters <= 0 {
		maxIters = MaxIterations
	}
	threshold := cfg.QualityThreshold
	if threshold <= 0 {
		threshold = QualityThreshold
	}
	return &Optimizer{
		client:    cfg.Client,
		maxIters:  maxIters,
		threshold: threshold,
		mapper:    result.NewMapper(logger),
		logger:    logger,
	}
}

// RunLoop refines the prompt object. Iteration 1 evaluates the
// original template unchanged; later iterations refine via the LLM
// when configured, falling back to deterministic refinement when the
// provider is unreachable. Cancellation propagates immediately.
//
// knnFailure carries retrieval failures observed while the prompt
// object was built; it is passed through into the response.
func (o *Optimizer) RunLoop(ctx context.Context, prompt types.PromptObject, knnFailure *types.KNNFailure) (types.OptimizeResponse, error) {
	resp := types.OptimizeResponse{
		PromptID:   prompt.ID,
		KNNFailure: knnFailure,
		Backend:    "deterministic",
	}
	if o.client != nil {
		resp.Backend = o.client.Provider()
		resp.Model = o.client.Model()
	}

	bestInstruction := prompt.Template
	bestScore := -1.0
	var feedbackLog []string

	for iter := 1; iter <= o.maxIters; iter++ {
		if err := ctx.Err(); err != nil {
			return types.OptimizeResponse{}, err
		}

		candidate := prompt.Template
		metaPrompt := ""
		if iter > 1 {
			candidate, metaPrompt = o.refine(ctx, prompt, feedbackLog)
			if err := ctx.Err(); err != nil {
				return types.OptimizeResponse{}, err
			}
		}

		score, feedback := evaluate(candidate, prompt.Constraints)
		o.logger.Debug("optimizer iteration scored",
			zap.String("prompt_id", prompt.ID),
			zap.Int("iteration", iter),
			zap.Float64("score", score))

		if score >= o.threshold {
			resp.FinalInstruction = candidate
			resp.FinalScore = score
			resp.IterationCount = iter
			resp.EarlyStopped = true
			return resp, nil
		}

		resp.Trajectory = append(resp.Trajectory, types.OPROIteration{
			IterationNumber:      iter,
			MetaPromptUsed:       metaPrompt,
			GeneratedInstruction: candidate,
			Score:                score,
			Feedback:             feedback,
		})
		if feedback != "" {
			feedbackLog = append(feedbackLog, feedback)
		}
		if score > bestScore {
			bestScore = score
			bestInstruction = candidate
		}
	}

	resp.FinalInstruction = bestInstruction
	resp.FinalScore = bestScore
	resp.IterationCount = o.maxIters
	return resp, nil
}

// refine produces the next candidate. Provider failures other than
// cancellation degrade to the deterministic branch; the loop must not
// die because the provider is down.
func (o *Optimizer) refine(ctx context.Context, prompt types.PromptObject, feedback []string) (candidate, metaPrompt string) {
	if o.client == nil {
		return simpleRefinement(prompt.Template, prompt.Constraints), ""
	}

	metaPrompt = buildMetaPrompt(prompt.Template, feedback)
	generated, err := o.client.Generate(ctx, metaPrompt)
	if err != nil {
		if result.IsCancellation(err) {
			// Reported by the ctx.Err check in the caller.
			return "", metaPrompt
		}
		de := o.mapper.MapLLMError(err, o.client.Provider(), o.client.Model(), len(metaPrompt))
		o.logger.Warn("llm refinement degraded to deterministic branch",
			zap.String("prompt_id", prompt.ID),
			zap.String("error_id", de.ErrorID))
		return simpleRefinement(prompt.Template, prompt.Constraints), metaPrompt
	}
	if generated == "" {
		return simpleRefinement(prompt.Template, prompt.Constraints), metaPrompt
	}
	return generated, metaPrompt
}
