// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package nlac implements the unified improvement strategy: it builds
// a prompt object from intent-specific scaffolds plus retrieved
// exemplars, then hands it to the optimizer and maps the result back
// into a prediction.
package nlac

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/knn"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/strategy"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// fewShotK is how many exemplars the builder injects.
const fewShotK = 3

// Retriever is the slice of the KNN provider the builder needs.
type Retriever interface {
	FindExamples(ctx context.Context, q knn.Query) ([]types.FewShotExample, *result.DomainError)
}

// BuildRequest carries the classified request into the builder.
type BuildRequest struct {
	Idea       string
	Context    string
	Intent     types.IntentType
	Complexity types.ComplexityLevel
	Guardrails []string
}

// Builder assembles PromptObjects. Retrieval is optional; without it
// the builder emits scaffold-only templates.
type Builder struct {
	retriever Retriever
	logger    *zap.Logger
}

// NewBuilder creates a builder. retriever may be nil when exemplar
// retrieval is disabled.
func NewBuilder(retriever Retriever, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = log.Logger()
	}
	return &Builder{retriever: retriever, logger: logger}
}

// Build assembles the prompt object and reports any retrieval failures
// observed on the way. Retrieval failures never abort the build; they
// degrade it to scaffold-only and surface through the failure summary.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (types.PromptObject, *types.KNNFailure, error) {
	if err := ctx.Err(); err != nil {
		return types.PromptObject{}, nil, err
	}
	if strings.TrimSpace(req.Idea) == "" {
		return types.PromptObject{}, nil, result.NewValidationError(
			"idea must be a non-empty string", nil)
	}

	role := strategy.RoleForIntent(req.Intent)
	tracker := knn.NewFailureTracker()

	examples := b.retrieve(ctx, req, tracker)
	if err := ctx.Err(); err != nil {
		return types.PromptObject{}, nil, err
	}

	template := b.assembleTemplate(role, req, examples)
	constraints := deriveConstraints(req, len(examples))

	now := time.Now().UTC()
	obj := types.PromptObject{
		ID:         uuid.NewString(),
		Version:    1,
		IntentType: req.Intent,
		Template:   template,
		StrategyMeta: map[string]any{
			"role":          role,
			"strategy":      "nlac",
			"intent":        string(req.Intent),
			"complexity":    string(req.Complexity),
			"knn_enabled":   b.retriever != nil,
			"fewshot_count": len(examples),
		},
		Constraints: constraints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return obj, tracker.Summary(), nil
}

// retrieve pulls few-shot exemplars. REFACTOR requests narrow the pool
// to exemplars carrying an expected output so the examples demonstrate
// before/after pairs.
func (b *Builder) retrieve(ctx context.Context, req BuildRequest, tracker *knn.FailureTracker) []types.FewShotExample {
	if b.retriever == nil {
		return nil
	}

	examples, derr := b.retriever.FindExamples(ctx, knn.Query{
		Intent:            req.Intent,
		Complexity:        req.Complexity,
		K:                 fewShotK,
		HasExpectedOutput: req.Intent == types.IntentRefactor,
		UserInput:         req.Idea,
	})
	if derr != nil {
		if result.IsCancellation(derr) {
			return nil
		}
		tracker.RecordFailure(derr.Code)
		b.logger.Warn("exemplar retrieval failed, building without examples",
			zap.String("error_id", derr.ErrorID),
			zap.String("intent", string(req.Intent)))
		return nil
	}
	tracker.RecordSuccess()
	return examples
}

func (b *Builder) assembleTemplate(role string, req BuildRequest, examples []types.FewShotExample) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a %s.\n\n", role)
	fmt.Fprintf(&sb, "# Task\n%s\n", req.Idea)
	if ctx := strings.TrimSpace(req.Context); ctx != "" {
		fmt.Fprintf(&sb, "\n# Context\n%s\n", ctx)
	}

	sb.WriteString("\n# Approach\n")
	sb.WriteString(approachForIntent(req.Intent))

	if len(req.Guardrails) > 0 {
		sb.WriteString("\n# Guardrails\n")
		for _, g := range req.Guardrails {
			fmt.Fprintf(&sb, "- %s\n", g)
		}
	}

	if len(examples) > 0 {
		sb.WriteString("\n# Examples\n")
		for i, ex := range examples {
			fmt.Fprintf(&sb, "\nExample %d:\nInput: %s\nImproved: %s\n",
				i+1, ex.InputIdea, ex.ImprovedPrompt)
			if ex.ExpectedOutput != "" {
				fmt.Fprintf(&sb, "Expected output: %s\n", ex.ExpectedOutput)
			}
		}
	}
	return sb.String()
}

func approachForIntent(intent types.IntentType) string {
	switch intent {
	case types.IntentDebug:
		return "Reproduce the failure, isolate the cause, then propose the minimal fix with verification steps.\n"
	case types.IntentRefactor:
		return "Identify the structural weaknesses, then restructure incrementally while preserving behavior.\n"
	case types.IntentExplain:
		return "Explain the subject from first principles, then walk through the concrete details with reasoning.\n"
	default:
		return "Produce the requested artifact step by step, stating assumptions as you go.\n"
	}
}

// deriveConstraints sets the optimizer constraints from the classified
// request.
func deriveConstraints(req BuildRequest, fewshotCount int) types.Constraints {
	c := types.Constraints{
		IncludeExamples:    fewshotCount > 0,
		IncludeExplanation: req.Intent == types.IntentExplain,
	}

	switch req.Complexity {
	case types.ComplexitySimple:
		c.MaxTokens = 512
	case types.ComplexityModerate:
		c.MaxTokens = 1024
	default:
		c.MaxTokens = 2048
	}

	if req.Intent == types.IntentGenerate || req.Intent == types.IntentRefactor {
		c.Format = "code"
	}
	return c
}
