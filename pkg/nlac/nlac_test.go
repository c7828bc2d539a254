// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package nlac

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/ifeval"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/knn"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/opro"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/strategy"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

type stubRetriever struct {
	examples []types.FewShotExample
	derr     *result.DomainError
	lastQ    knn.Query
}

func (s *stubRetriever) FindExamples(ctx context.Context, q knn.Query) ([]types.FewShotExample, *result.DomainError) {
	s.lastQ = q
	if s.derr != nil {
		return nil, s.derr
	}
	return s.examples, nil
}

func TestBuildScaffoldOnly(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())

	obj, failure, err := b.Build(context.Background(), BuildRequest{
		Idea:       "write a csv parser",
		Context:    "ingestion service",
		Intent:     types.IntentGenerate,
		Complexity: types.ComplexitySimple,
	})
	require.NoError(t, err)
	assert.Nil(t, failure)

	assert.NotEmpty(t, obj.ID)
	_, uuidErr := uuid.Parse(obj.ID)
	assert.NoError(t, uuidErr)
	assert.Equal(t, 1, obj.Version)
	assert.Contains(t, obj.Template, "write a csv parser")
	assert.Contains(t, obj.Template, "ingestion service")
	assert.NotContains(t, obj.Template, "# Examples")

	assert.Equal(t, "nlac", obj.MetaString("strategy"))
	assert.Equal(t, false, obj.StrategyMeta["knn_enabled"])
	assert.Equal(t, 0, obj.StrategyMeta["fewshot_count"])
	assert.Equal(t, 512, obj.Constraints.MaxTokens)
	assert.False(t, obj.Constraints.IncludeExamples)
}

func TestBuildInjectsExamples(t *testing.T) {
	r := &stubRetriever{examples: []types.FewShotExample{
		{InputIdea: "parse yaml", ImprovedPrompt: "You are an expert...", Similarity: 0.8},
		{InputIdea: "parse toml", ImprovedPrompt: "You are an expert...", Similarity: 0.6},
	}}
	b := NewBuilder(r, zap.NewNop())

	obj, failure, err := b.Build(context.Background(), BuildRequest{
		Idea:       "write a csv parser",
		Intent:     types.IntentGenerate,
		Complexity: types.ComplexityModerate,
	})
	require.NoError(t, err)
	assert.Nil(t, failure)

	assert.Contains(t, obj.Template, "# Examples")
	assert.Contains(t, obj.Template, "parse yaml")
	assert.Equal(t, 2, obj.StrategyMeta["fewshot_count"])
	assert.Equal(t, true, obj.StrategyMeta["knn_enabled"])
	assert.True(t, obj.Constraints.IncludeExamples)
	assert.Equal(t, 1024, obj.Constraints.MaxTokens)

	assert.Equal(t, 3, r.lastQ.K)
	assert.False(t, r.lastQ.HasExpectedOutput)
}

func TestBuildRendersGuardrails(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())

	obj, _, err := b.Build(context.Background(), BuildRequest{
		Idea:       "write a python function to validate email addresses",
		Intent:     types.IntentGenerate,
		Complexity: types.ComplexitySimple,
		Guardrails: []string{"no external deps", "python 3.12"},
	})
	require.NoError(t, err)

	assert.Contains(t, obj.Template, "# Guardrails")
	assert.Contains(t, obj.Template, "- no external deps")
	assert.Contains(t, obj.Template, "- python 3.12")
}

func TestBuildRefactorFiltersExpectedOutput(t *testing.T) {
	r := &stubRetriever{}
	b := NewBuilder(r, zap.NewNop())

	_, _, err := b.Build(context.Background(), BuildRequest{
		Idea:       "refactor the cache",
		Intent:     types.IntentRefactor,
		Complexity: types.ComplexityModerate,
	})
	require.NoError(t, err)
	assert.True(t, r.lastQ.HasExpectedOutput)
}

func TestBuildRetrievalFailureDegrades(t *testing.T) {
	r := &stubRetriever{derr: result.NewDataCorruptionError("catalog broken", nil, nil)}
	b := NewBuilder(r, zap.NewNop())

	obj, failure, err := b.Build(context.Background(), BuildRequest{
		Idea:       "write a csv parser",
		Intent:     types.IntentGenerate,
		Complexity: types.ComplexitySimple,
	})
	require.NoError(t, err, "retrieval failure must degrade, not abort")

	require.NotNil(t, failure)
	assert.Equal(t, 1, failure.FailureCount)
	assert.Equal(t, 1, failure.CallCount)
	assert.NotContains(t, obj.Template, "# Examples")
	assert.Equal(t, 0, obj.StrategyMeta["fewshot_count"])
}

func TestBuildEmptyIdea(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())
	_, _, err := b.Build(context.Background(), BuildRequest{Idea: "  "})
	require.Error(t, err)
	de, ok := result.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, result.KindValidation, de.Kind)
}

func TestBuildCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBuilder(nil, zap.NewNop())
	_, _, err := b.Build(ctx, BuildRequest{Idea: "anything"})
	assert.ErrorIs(t, err, context.Canceled)
}

func newTestStrategy(r Retriever) *Strategy {
	return New(Config{
		Builder:   NewBuilder(r, zap.NewNop()),
		Optimizer: opro.NewOptimizer(opro.Config{Logger: zap.NewNop()}),
		Validator: ifeval.NewValidator(ifeval.ValidatorConfig{Logger: zap.NewNop()}),
		Logger:    zap.NewNop(),
	})
}

func TestStrategyImprove(t *testing.T) {
	s := newTestStrategy(nil)
	assert.Equal(t, "nlac", s.Name())

	res, err := s.Improve(context.Background(), strategy.Request{
		Idea:    "write a python function to validate email addresses",
		Context: "backend utility",
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	pred := res.Value()
	assert.Empty(t, res.DegradationFlags())

	assert.NotEmpty(t, pred.ImprovedPrompt)
	assert.Equal(t, "expert prompt engineer", pred.Role)
	assert.True(t, strings.HasPrefix(pred.Directive, "nlac + "))
	assert.Contains(t, []string{"chain-of-thought", "decomposition"}, pred.Framework)
	assert.GreaterOrEqual(t, pred.Confidence, 0.0)
	assert.LessOrEqual(t, pred.Confidence, 1.0)

	assert.GreaterOrEqual(t, len(pred.Guardrails), 3)
	assert.Contains(t, pred.Guardrails[0], "max_tokens=")
	assert.Contains(t, pred.Guardrails[1], "include_examples=")
}

func TestStrategyFrameworkTracksComplexity(t *testing.T) {
	s := newTestStrategy(nil)

	res, err := s.Improve(context.Background(), strategy.Request{Idea: "write a haiku about create"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "chain-of-thought", res.Value().Framework)
}

func TestStrategyImproveRetrievalFailureSetsFlag(t *testing.T) {
	r := &stubRetriever{derr: result.NewDataCorruptionError("catalog broken", nil, nil)}
	s := newTestStrategy(r)

	res, err := s.Improve(context.Background(), strategy.Request{Idea: "write a csv parser"})
	require.NoError(t, err, "retrieval failure must degrade, not fail the run")
	require.True(t, res.IsSuccess())

	assert.True(t, res.Flag(strategy.FlagKNNDegraded))
	assert.NotEmpty(t, res.Value().ImprovedPrompt)
}

func TestStrategyImproveEmptyIdeaFailsResult(t *testing.T) {
	s := newTestStrategy(nil)

	res, err := s.Improve(context.Background(), strategy.Request{Idea: "   "})
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	assert.Equal(t, result.KindValidation, res.Error().Kind)
}

func TestStrategyImproveCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestStrategy(nil)
	_, err := s.Improve(ctx, strategy.Request{Idea: "write a parser"})
	assert.ErrorIs(t, err, context.Canceled)
}
