// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package metrics scores improved prompts across quality, performance
// and impact dimensions, grades the composite, and analyzes batches
// for trends and version comparisons.
package metrics

import (
	"time"
)

// FrameworkType names the prompting framework a prediction used.
type FrameworkType string

const (
	FrameworkChainOfThought FrameworkType = "chain-of-thought"
	FrameworkDecomposition  FrameworkType = "decomposition"
	FrameworkZeroShot       FrameworkType = "zero-shot"
	FrameworkFewShot        FrameworkType = "few-shot"
	FrameworkTreeOfThought  FrameworkType = "tree-of-thought"
)

// Valid reports whether the framework is a recognized variant.
func (f FrameworkType) Valid() bool {
	switch f {
	case FrameworkChainOfThought, FrameworkDecomposition,
		FrameworkZeroShot, FrameworkFewShot, FrameworkTreeOfThought:
		return true
	}
	return false
}

// MaxGuardrailsCounted caps the guardrail bonus input.
const MaxGuardrailsCounted = 5

// QualityMetrics captures how well-formed the improved prompt is.
type QualityMetrics struct {
	CoherenceScore       float64 `json:"coherence_score"`
	RelevanceScore       float64 `json:"relevance_score"`
	CompletenessScore    float64 `json:"completeness_score"`
	ClarityScore         float64 `json:"clarity_score"`
	GuardrailsCount      int     `json:"guardrails_count"`
	HasRequiredStructure bool    `json:"has_required_structure"`
}

// CompositeScore is the weighted average of the four sub-scores plus a
// structure bonus (+0.10) and a guardrail bonus (0.05 per guardrail,
// capped at +0.15), clipped to [0, 1].
func (q QualityMetrics) CompositeScore() float64 {
	score := (q.CoherenceScore + q.RelevanceScore + q.CompletenessScore + q.ClarityScore) / 4
	if q.HasRequiredStructure {
		score += 0.10
	}
	bonus := 0.05 * float64(q.GuardrailsCount)
	if bonus > 0.15 {
		bonus = 0.15
	}
	score += bonus
	return clamp01(score)
}

// Performance scoring thresholds: each sub-score is 1.0 at the
// excellent threshold and falls linearly to 0.0 at the minimum
// acceptable one.
const (
	excellentLatencyMS = 500
	worstLatencyMS     = 5000

	excellentCostUSD = 0.001
	worstCostUSD     = 0.05

	excellentTokens = 500
	worstTokens     = 4000
)

// PerformanceMetrics captures the cost of producing the prompt.
type PerformanceMetrics struct {
	LatencyMS   int     `json:"latency_ms"`
	TotalTokens int     `json:"total_tokens"`
	CostUSD     float64 `json:"cost_usd"`
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Backend     string  `json:"backend"`
}

// PerformanceScore weights latency at 0.5, cost at 0.3 and token count
// at 0.2.
func (p PerformanceMetrics) PerformanceScore() float64 {
	latency := piecewise(float64(p.LatencyMS), excellentLatencyMS, worstLatencyMS)
	cost := piecewise(p.CostUSD, excellentCostUSD, worstCostUSD)
	tokens := piecewise(float64(p.TotalTokens), excellentTokens, worstTokens)
	return 0.5*latency + 0.3*cost + 0.2*tokens
}

// piecewise maps value to 1.0 at or below excellent, 0.0 at or above
// worst, linear in between.
func piecewise(value, excellent, worst float64) float64 {
	if value <= excellent {
		return 1.0
	}
	if value >= worst {
		return 0.0
	}
	return (worst - value) / (worst - excellent)
}

// ImpactMetrics captures downstream usage signals.
type ImpactMetrics struct {
	CopyCount         int      `json:"copy_count"`
	RegenerationCount int      `json:"regeneration_count"`
	FeedbackScore     *float64 `json:"feedback_score,omitempty"` // 1..5
	ReuseCount        int      `json:"reuse_count"`
}

// SuccessRate is copies over total attempts, 0 when nothing happened.
func (i ImpactMetrics) SuccessRate() float64 {
	total := i.CopyCount + i.RegenerationCount
	if total == 0 {
		return 0
	}
	return float64(i.CopyCount) / float64(total)
}

// ImpactScore combines normalized copies, success rate, feedback and
// reuse with weights 0.30 / 0.30 / 0.25 / 0.15.
func (i ImpactMetrics) ImpactScore() float64 {
	copyScore := float64(i.CopyCount) / 5
	if copyScore > 1 {
		copyScore = 1
	}
	feedback := 0.0
	if i.FeedbackScore != nil {
		feedback = *i.FeedbackScore / 5
	}
	reuse := float64(i.ReuseCount) / 5
	if reuse > 1 {
		reuse = 1
	}
	return clamp01(0.30*copyScore + 0.30*i.SuccessRate() + 0.25*feedback + 0.15*reuse)
}

// PromptMetrics is the full measurement of one improved prompt.
type PromptMetrics struct {
	PromptID       string             `json:"prompt_id"`
	OriginalIdea   string             `json:"original_idea"`
	ImprovedPrompt string             `json:"improved_prompt"`
	Quality        QualityMetrics     `json:"quality"`
	Performance    PerformanceMetrics `json:"performance"`
	Impact         ImpactMetrics      `json:"impact"`
	MeasuredAt     time.Time          `json:"measured_at"`
	Framework      FrameworkType      `json:"framework"`
	Provider       string             `json:"provider"`
	Model          string             `json:"model"`
	Backend        string             `json:"backend"`
}

// OverallScore weights quality at 0.50 and performance and impact at
// 0.25 each.
func (m PromptMetrics) OverallScore() float64 {
	return 0.50*m.Quality.CompositeScore() +
		0.25*m.Performance.PerformanceScore() +
		0.25*m.Impact.ImpactScore()
}

// Grade maps the overall score onto the letter ladder.
func (m PromptMetrics) Grade() string {
	return GradeFor(m.OverallScore())
}

// GradeFor maps a score in [0, 1] to a letter grade.
func GradeFor(score float64) string {
	switch {
	case score >= 0.97:
		return "A+"
	case score >= 0.93:
		return "A"
	case score >= 0.90:
		return "A-"
	case score >= 0.87:
		return "B+"
	case score >= 0.83:
		return "B"
	case score >= 0.80:
		return "B-"
	case score >= 0.77:
		return "C+"
	case score >= 0.70:
		return "C"
	case score >= 0.60:
		return "D"
	default:
		return "F"
	}
}

// IsAcceptable is the minimum bar for surfacing a prompt: decent
// quality, tolerable performance and a success rate above coin-flip.
func (m PromptMetrics) IsAcceptable() bool {
	return m.Quality.CompositeScore() >= 0.60 &&
		m.Performance.PerformanceScore() >= 0.40 &&
		m.Impact.SuccessRate() >= 0.50
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
