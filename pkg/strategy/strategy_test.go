// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLen    int
		addSuffix bool
		want      string
	}{
		{
			name:   "within bound unchanged",
			text:   "short text",
			maxLen: 100,
			want:   "short text",
		},
		{
			name:   "cuts at late sentence end",
			text:   strings.Repeat("a", 80) + ". trailing words beyond the bound",
			maxLen: 100,
			want:   strings.Repeat("a", 80) + ".",
		},
		{
			name:   "ignores early sentence end",
			text:   "early. " + strings.Repeat("b", 200),
			maxLen: 100,
			want:   ("early. " + strings.Repeat("b", 200))[:100],
		},
		{
			name:   "cuts at late newline when no period",
			text:   strings.Repeat("a", 90) + "\n" + strings.Repeat("b", 50),
			maxLen: 100,
			want:   strings.Repeat("a", 90),
		},
		{
			name:      "hard cut with suffix",
			text:      strings.Repeat("x", 200),
			maxLen:    100,
			addSuffix: true,
			want:      strings.Repeat("x", 100) + "...",
		},
		{
			name:   "hard cut without suffix",
			text:   strings.Repeat("x", 200),
			maxLen: 100,
			want:   strings.Repeat("x", 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.text, tt.maxLen, tt.addSuffix))
		})
	}
}

func TestLegacyStrategies(t *testing.T) {
	tests := []struct {
		strategy      Strategy
		wantName      string
		wantFramework string
		maxChars      int
	}{
		{NewSimple(), "simple", "zero-shot", SimpleMaxChars},
		{NewModerate(), "moderate", "chain-of-thought", ModerateMaxChars},
		{NewComplex(), "complex", "decomposition", ComplexMaxChars},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.strategy.Name())

			res, err := tt.strategy.Improve(context.Background(), Request{
				Idea:    "write a function to validate email addresses",
				Context: "backend utility",
			})
			require.NoError(t, err)
			require.True(t, res.IsSuccess())
			pred := res.Value()

			assert.Contains(t, pred.ImprovedPrompt, "validate email addresses")
			assert.Contains(t, pred.ImprovedPrompt, "backend utility")
			assert.Equal(t, tt.wantFramework, pred.Framework)
			assert.NotEmpty(t, pred.Role)
			assert.GreaterOrEqual(t, len(pred.Guardrails), 3)
			assert.LessOrEqual(t, len(pred.Guardrails), 5)
			assert.Greater(t, pred.Confidence, 0.0)
			assert.LessOrEqual(t, pred.Confidence, 1.0)
			assert.LessOrEqual(t, utf8.RuneCountInString(pred.ImprovedPrompt), tt.maxChars+3)
		})
	}
}

func TestLegacyStrategyEmptyIdea(t *testing.T) {
	res, err := NewSimple().Improve(context.Background(), Request{Idea: "   "})
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	assert.Equal(t, result.KindValidation, res.Error().Kind)
}

func TestLegacyStrategyCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewModerate().Improve(ctx, Request{Idea: "write a parser"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLegacyStrategyDirectiveCarriesIntent(t *testing.T) {
	res, err := NewModerate().Improve(context.Background(), Request{Idea: "fix the login bug"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "moderate + DEBUG", res.Value().Directive)
}

func TestLegacyStrategyUserGuardrails(t *testing.T) {
	res, err := NewModerate().Improve(context.Background(), Request{
		Idea:       "write a python function to validate email addresses",
		Guardrails: []string{"no external deps", "  ", "python 3.12"},
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	pred := res.Value()

	assert.Contains(t, pred.ImprovedPrompt, "# Guardrails")
	assert.Contains(t, pred.ImprovedPrompt, "- no external deps")
	assert.Contains(t, pred.ImprovedPrompt, "- python 3.12")

	assert.Contains(t, pred.Guardrails, "no external deps")
	assert.LessOrEqual(t, len(pred.Guardrails), 5)
}

func TestMergeGuardrailsBound(t *testing.T) {
	base := []string{"a", "b", "c", "d"}
	merged := mergeGuardrails(base, []string{"e", "f", "g"})
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, merged)

	// A full tier set leaves no room but keeps the base intact.
	full := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, full, mergeGuardrails(full, []string{"x"}))
}

func TestSelectorLegacyRouting(t *testing.T) {
	sel, err := NewSelector(context.Background(), SelectorConfig{Logger: zap.NewNop()})
	require.NoError(t, err)

	tests := []struct {
		complexity types.ComplexityLevel
		wantName   string
	}{
		{types.ComplexitySimple, "simple"},
		{types.ComplexityModerate, "moderate"},
		{types.ComplexityComplex, "complex"},
	}
	for _, tt := range tests {
		chosen, err := sel.Select(tt.complexity)
		require.NoError(t, err)
		assert.Equal(t, tt.wantName, chosen.Name())
	}

	_, err = sel.Select("NONSENSE")
	require.Error(t, err)
}

func TestSelectorInvalidMode(t *testing.T) {
	_, err := NewSelector(context.Background(), SelectorConfig{
		Mode:   "turbo",
		Logger: zap.NewNop(),
	})
	require.Error(t, err)
	de, ok := result.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, result.KindValidation, de.Kind)
}

func TestSelectorComplexFallback(t *testing.T) {
	sel, err := NewSelector(context.Background(), SelectorConfig{
		Complex: func(ctx context.Context) (Strategy, error) {
			return nil, fmt.Errorf("calibration file unreadable")
		},
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	assert.True(t, sel.Flag(FlagComplexDisabled))
	assert.Equal(t, []string{FlagComplexDisabled}, sel.DegradationFlags())

	chosen, err := sel.Select(types.ComplexityComplex)
	require.NoError(t, err)
	assert.Equal(t, "moderate", chosen.Name())
}

func TestSelectorNLaCBuilderFailureSetsFlag(t *testing.T) {
	sel, err := NewSelector(context.Background(), SelectorConfig{
		NLaC: func(ctx context.Context) (Strategy, error) {
			return nil, fmt.Errorf("catalog missing")
		},
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	assert.True(t, sel.Flag(FlagKNNDisabled))
}

func TestSelectorCancellationPropagates(t *testing.T) {
	_, err := NewSelector(context.Background(), SelectorConfig{
		Complex: func(ctx context.Context) (Strategy, error) {
			return nil, fmt.Errorf("building aborted: %w", context.Canceled)
		},
		Logger: zap.NewNop(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

type fixedStrategy struct {
	name  string
	pred  types.Prediction
	flags []string
	err   error
}

func (f *fixedStrategy) Name() string { return f.name }
func (f *fixedStrategy) Improve(ctx context.Context, req Request) (result.Result[types.Prediction], error) {
	if f.err != nil {
		return result.Result[types.Prediction]{}, f.err
	}
	res := result.Ok(f.pred)
	for _, flag := range f.flags {
		res = res.WithFlag(flag)
	}
	return res, nil
}

func TestSelectorNLaCModeIgnoresComplexity(t *testing.T) {
	unified := &fixedStrategy{
		name: "nlac",
		pred: types.Prediction{ImprovedPrompt: "done"},
	}
	sel, err := NewSelector(context.Background(), SelectorConfig{
		Mode: ModeNLaC,
		NLaC: func(ctx context.Context) (Strategy, error) { return unified, nil },
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	for _, c := range []types.ComplexityLevel{
		types.ComplexitySimple, types.ComplexityModerate, types.ComplexityComplex,
	} {
		chosen, err := sel.Select(c)
		require.NoError(t, err)
		assert.Equal(t, "nlac", chosen.Name())
	}
}

func TestSelectorNLaCModeUnavailable(t *testing.T) {
	sel, err := NewSelector(context.Background(), SelectorConfig{
		Mode: ModeNLaC,
		NLaC: func(ctx context.Context) (Strategy, error) {
			return nil, errors.New("provider down")
		},
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	_, err = sel.Select(types.ComplexitySimple)
	require.Error(t, err)
	de, ok := result.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, result.KindLLMProvider, de.Kind)
}

func TestSelectorImprove(t *testing.T) {
	sel, err := NewSelector(context.Background(), SelectorConfig{Logger: zap.NewNop()})
	require.NoError(t, err)

	res, info, err := sel.Improve(context.Background(), Request{
		Idea: "haz una revisión del sistema NLaC",
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, types.IntentExplain, info.Intent)
	assert.Equal(t, types.ComplexityModerate, info.Complexity)
	assert.Equal(t, "moderate", info.Strategy)
	assert.NotEmpty(t, res.Value().ImprovedPrompt)
	assert.Empty(t, res.DegradationFlags())
}

func TestSelectorImproveCarriesConstructionFlags(t *testing.T) {
	sel, err := NewSelector(context.Background(), SelectorConfig{
		Complex: func(ctx context.Context) (Strategy, error) {
			return nil, fmt.Errorf("calibration file unreadable")
		},
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	res, _, err := sel.Improve(context.Background(), Request{Idea: "write a parser"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.True(t, res.Flag(FlagComplexDisabled),
		"construction-time flags must ride every successful result")
}

func TestSelectorImproveMergesStrategyFlags(t *testing.T) {
	degraded := &fixedStrategy{
		name:  "nlac",
		pred:  types.Prediction{ImprovedPrompt: "done"},
		flags: []string{FlagKNNDegraded},
	}
	sel, err := NewSelector(context.Background(), SelectorConfig{
		Mode:   ModeNLaC,
		NLaC:   func(ctx context.Context) (Strategy, error) { return degraded, nil },
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	res, _, err := sel.Improve(context.Background(), Request{Idea: "write a parser"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.True(t, res.Flag(FlagKNNDegraded))
}

func TestSelectorImproveDomainFailureRidesResult(t *testing.T) {
	sel, err := NewSelector(context.Background(), SelectorConfig{Logger: zap.NewNop()})
	require.NoError(t, err)

	res, _, err := sel.Improve(context.Background(), Request{Idea: "   "})
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	assert.Equal(t, result.KindValidation, res.Error().Kind)
}
