// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package metrics

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// tokenRates is the per-token cost table keyed "provider/model".
// Unlisted pairs fall back to defaultTokenRate.
var tokenRates = map[string]float64{
	"anthropic/claude-sonnet-4-5-20250929": 0.000003,
	"anthropic/claude-haiku-4-20250815":    0.0000008,
	"anthropic/claude-opus-4-20250514":     0.000015,
}

const defaultTokenRate = 0.000003

// EvaluationInput carries one improvement result into the evaluator.
type EvaluationInput struct {
	PromptID     string
	OriginalIdea string
	Prediction   types.Prediction

	LatencyMS int
	// TotalTokens of the run; 0 means unknown and triggers estimation
	// from the improved prompt length.
	TotalTokens int

	Provider string
	Model    string
	Backend  string
}

// Evaluator derives PromptMetrics from improvement results using
// deterministic heuristics. Stateless and safe for concurrent use.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = log.Logger()
	}
	return &Evaluator{logger: logger}
}

// Calculate scores the result. Impact defaults to zeros when no usage
// data exists yet.
func (e *Evaluator) Calculate(in EvaluationInput, impact *ImpactMetrics) PromptMetrics {
	pred := in.Prediction

	quality := QualityMetrics{
		CoherenceScore:    coherenceScore(pred),
		RelevanceScore:    relevanceScore(in.OriginalIdea, pred.ImprovedPrompt),
		CompletenessScore: completenessScore(pred.ImprovedPrompt),
		ClarityScore:      clarityScore(pred.ImprovedPrompt),
		GuardrailsCount:   clampInt(len(pred.Guardrails), MaxGuardrailsCounted),
		HasRequiredStructure: pred.Role != "" && pred.Directive != "" &&
			pred.Framework != "" && len(pred.Guardrails) > 0,
	}

	tokens := in.TotalTokens
	if tokens == 0 {
		tokens = estimateTokens(pred.ImprovedPrompt)
	}
	performance := PerformanceMetrics{
		LatencyMS:   in.LatencyMS,
		TotalTokens: tokens,
		CostUSD:     float64(tokens) * tokenRate(in.Provider, in.Model),
		Provider:    in.Provider,
		Model:       in.Model,
		Backend:     in.Backend,
	}

	resolved := ImpactMetrics{}
	if impact != nil {
		resolved = *impact
	}

	return PromptMetrics{
		PromptID:       in.PromptID,
		OriginalIdea:   in.OriginalIdea,
		ImprovedPrompt: pred.ImprovedPrompt,
		Quality:        quality,
		Performance:    performance,
		Impact:         resolved,
		MeasuredAt:     time.Now().UTC(),
		Framework:      e.resolveFramework(pred.Framework),
		Provider:       in.Provider,
		Model:          in.Model,
		Backend:        in.Backend,
	}
}

// resolveFramework validates the framework string, warning and falling
// back to chain-of-thought when unrecognized.
func (e *Evaluator) resolveFramework(raw string) FrameworkType {
	f := FrameworkType(raw)
	if f.Valid() {
		return f
	}
	e.logger.Warn("unrecognized framework, defaulting",
		zap.String("framework", raw),
		zap.String("default", string(FrameworkChainOfThought)))
	return FrameworkChainOfThought
}

// estimateTokens approximates provider tokenization as one token per
// four characters, rounded up.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func tokenRate(provider, model string) float64 {
	if rate, ok := tokenRates[provider+"/"+model]; ok {
		return rate
	}
	return defaultTokenRate
}

// coherenceScore rewards the structural markers a well-formed improved
// prompt carries: a persona opener, a directive, and markdown sections.
func coherenceScore(pred types.Prediction) float64 {
	score := 0.4
	if strings.Contains(pred.ImprovedPrompt, "You are") {
		score += 0.2
	}
	if strings.Contains(pred.ImprovedPrompt, "# ") {
		score += 0.2
	}
	if pred.Directive != "" {
		score += 0.2
	}
	return clamp01(score)
}

// relevanceScore measures how much of the original idea's vocabulary
// survived into the improved prompt.
func relevanceScore(idea, prompt string) float64 {
	ideaWords := strings.Fields(strings.ToLower(idea))
	if len(ideaWords) == 0 {
		return 0
	}
	promptLower := strings.ToLower(prompt)
	matched := 0
	for _, w := range ideaWords {
		if strings.Contains(promptLower, w) {
			matched++
		}
	}
	return float64(matched) / float64(len(ideaWords))
}

// completenessScore counts markdown sections, saturating at four.
func completenessScore(prompt string) float64 {
	sections := strings.Count(prompt, "# ")
	score := float64(sections) / 4
	return clamp01(score)
}

// clarityScore penalizes run-on sentences: average sentence length at
// or below 20 words scores 1.0, falling linearly to 0.0 at 60.
func clarityScore(prompt string) float64 {
	sentences := strings.FieldsFunc(prompt, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	if len(sentences) == 0 {
		return 0
	}
	totalWords := 0
	count := 0
	for _, s := range sentences {
		words := len(strings.Fields(s))
		if words == 0 {
			continue
		}
		totalWords += words
		count++
	}
	if count == 0 {
		return 0
	}
	avg := float64(totalWords) / float64(count)
	return piecewise(avg, 20, 60)
}

func clampInt(v, max int) int {
	if v > max {
		return max
	}
	return v
}
