// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

func TestCompositeScoreBoundsAndMonotonicity(t *testing.T) {
	base := QualityMetrics{
		CoherenceScore:    0.6,
		RelevanceScore:    0.7,
		CompletenessScore: 0.5,
		ClarityScore:      0.8,
	}

	prev := -1.0
	for count := 0; count <= 3; count++ {
		q := base
		q.GuardrailsCount = count
		score := q.CompositeScore()
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
		assert.Greater(t, score, prev,
			"guardrails 0..3 must monotonically increase the composite")
		prev = score
	}

	// The guardrail bonus caps at +0.15.
	q3, q5 := base, base
	q3.GuardrailsCount = 3
	q5.GuardrailsCount = 5
	assert.Equal(t, q3.CompositeScore(), q5.CompositeScore())

	// Structure bonus.
	withStructure := base
	withStructure.HasRequiredStructure = true
	assert.InDelta(t, base.CompositeScore()+0.10, withStructure.CompositeScore(), 1e-9)
}

func TestPerformanceScoreMonotonicity(t *testing.T) {
	base := PerformanceMetrics{LatencyMS: 2000, TotalTokens: 1500, CostUSD: 0.01}

	faster := base
	faster.LatencyMS = 1000
	assert.Greater(t, faster.PerformanceScore(), base.PerformanceScore())

	cheaper := base
	cheaper.CostUSD = 0.005
	assert.Greater(t, cheaper.PerformanceScore(), base.PerformanceScore())

	leaner := base
	leaner.TotalTokens = 800
	assert.Greater(t, leaner.PerformanceScore(), base.PerformanceScore())

	// Saturation at the excellent thresholds.
	best := PerformanceMetrics{LatencyMS: 100, TotalTokens: 100, CostUSD: 0.0001}
	assert.InDelta(t, 1.0, best.PerformanceScore(), 1e-9)

	worst := PerformanceMetrics{LatencyMS: 60000, TotalTokens: 50000, CostUSD: 1.0}
	assert.InDelta(t, 0.0, worst.PerformanceScore(), 1e-9)
}

func TestImpactScore(t *testing.T) {
	assert.Zero(t, ImpactMetrics{}.SuccessRate())
	assert.Zero(t, ImpactMetrics{}.ImpactScore())

	i := ImpactMetrics{CopyCount: 3, RegenerationCount: 1}
	assert.InDelta(t, 0.75, i.SuccessRate(), 1e-9)

	feedback := 5.0
	full := ImpactMetrics{CopyCount: 5, ReuseCount: 5, FeedbackScore: &feedback}
	assert.InDelta(t, 1.0, full.ImpactScore(), 1e-9)
}

func TestGradeLadder(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.99, "A+"}, {0.95, "A"}, {0.91, "A-"}, {0.88, "B+"},
		{0.85, "B"}, {0.81, "B-"}, {0.78, "C+"}, {0.72, "C"},
		{0.65, "D"}, {0.30, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.score), "score %.2f", tt.score)
	}
}

func sampleInput() EvaluationInput {
	return EvaluationInput{
		PromptID:     "p-1",
		OriginalIdea: "write a function to validate email addresses",
		Prediction: types.Prediction{
			ImprovedPrompt: "You are an expert prompt engineer.\n\n# Task\nwrite a function to validate email addresses.\n\n# Requirements\nKeep it testable.",
			Role:           "expert prompt engineer",
			Directive:      "nlac + GENERATE",
			Framework:      "chain-of-thought",
			Guardrails:     []string{"max_tokens=512", "include_examples=false", "include_explanation=false"},
		},
		LatencyMS: 1200,
		Provider:  "anthropic",
		Model:     "claude-sonnet-4-5-20250929",
		Backend:   "anthropic",
	}
}

func TestEvaluatorCalculate(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	m := e.Calculate(sampleInput(), nil)

	assert.Equal(t, "p-1", m.PromptID)
	assert.True(t, m.Quality.HasRequiredStructure)
	assert.Equal(t, 3, m.Quality.GuardrailsCount)
	assert.Greater(t, m.Quality.CompositeScore(), 0.5)
	assert.Greater(t, m.Quality.RelevanceScore, 0.9, "idea vocabulary is fully present")

	// Tokens estimated as ceil(chars/4) when absent.
	wantTokens := (len(sampleInput().Prediction.ImprovedPrompt) + 3) / 4
	assert.Equal(t, wantTokens, m.Performance.TotalTokens)
	assert.InDelta(t, float64(wantTokens)*0.000003, m.Performance.CostUSD, 1e-12)

	assert.Equal(t, FrameworkChainOfThought, m.Framework)
	assert.Zero(t, m.Impact.CopyCount, "impact defaults to zeros")
	assert.False(t, m.MeasuredAt.IsZero())
}

func TestEvaluatorFrameworkFallback(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	in := sampleInput()
	in.Prediction.Framework = "galaxy-brain"
	m := e.Calculate(in, nil)
	assert.Equal(t, FrameworkChainOfThought, m.Framework)
}

func TestEvaluatorGuardrailsClipped(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	in := sampleInput()
	in.Prediction.Guardrails = make([]string, 9)
	m := e.Calculate(in, nil)
	assert.Equal(t, MaxGuardrailsCounted, m.Quality.GuardrailsCount)
}

func metricAt(ts time.Time, quality float64) PromptMetrics {
	return PromptMetrics{
		PromptID:   "p",
		MeasuredAt: ts,
		Quality: QualityMetrics{
			CoherenceScore:    quality,
			RelevanceScore:    quality,
			CompletenessScore: quality,
			ClarityScore:      quality,
		},
		Performance: PerformanceMetrics{LatencyMS: 1000, TotalTokens: 1000, CostUSD: 0.01},
		Framework:   FrameworkChainOfThought,
	}
}

func TestSummarize(t *testing.T) {
	now := time.Now().UTC()
	batch := []PromptMetrics{
		metricAt(now, 0.9),
		metricAt(now, 0.5),
	}
	s := Summarize(batch)
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 0.7, s.Quality.Mean, 1e-9)
	assert.InDelta(t, 0.5, s.Quality.Min, 1e-9)
	assert.InDelta(t, 0.9, s.Quality.Max, 1e-9)
	assert.NotEmpty(t, s.GradeDistribution)

	empty := Summarize(nil)
	assert.Zero(t, empty.Count)
}

func TestAnalyzeTrends(t *testing.T) {
	now := time.Now().UTC()

	improving := []PromptMetrics{
		metricAt(now.Add(-4*time.Hour), 0.4),
		metricAt(now.Add(-3*time.Hour), 0.4),
		metricAt(now.Add(-2*time.Hour), 0.8),
		metricAt(now.Add(-1*time.Hour), 0.8),
	}
	r := AnalyzeTrends(improving)
	assert.Equal(t, TrendImproving, r.Quality)
	assert.Equal(t, TrendStable, r.Performance)

	declining := []PromptMetrics{
		metricAt(now.Add(-4*time.Hour), 0.8),
		metricAt(now.Add(-3*time.Hour), 0.8),
		metricAt(now.Add(-2*time.Hour), 0.4),
		metricAt(now.Add(-1*time.Hour), 0.4),
	}
	r = AnalyzeTrends(declining)
	assert.Equal(t, TrendDeclining, r.Quality)
	assert.NotEmpty(t, r.Recommendations)

	r = AnalyzeTrends([]PromptMetrics{metricAt(now, 0.5)})
	assert.Equal(t, TrendStable, r.Quality)
}

func TestCompareVersions(t *testing.T) {
	now := time.Now().UTC()
	baseline := []PromptMetrics{metricAt(now, 0.4), metricAt(now, 0.4)}
	treatment := []PromptMetrics{metricAt(now, 0.9), metricAt(now, 0.9)}

	report := CompareVersions(baseline, treatment)
	assert.Equal(t, "treatment", report.Winner)
	assert.Greater(t, report.Deltas["quality"], 0.0)
	assert.NotEmpty(t, report.Explanation)

	tie := CompareVersions(baseline, baseline)
	assert.Equal(t, "tie", tie.Winner)
}
