// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package types contains shared domain types used across the prompt
// improvement pipeline. This package breaks import cycles by providing
// common types that the strategy, retrieval and optimizer packages all
// depend on.
package types

import (
	"time"
)

// IntentType classifies what the user wants done with their idea.
type IntentType string

const (
	IntentGenerate IntentType = "GENERATE"
	IntentDebug    IntentType = "DEBUG"
	IntentRefactor IntentType = "REFACTOR"
	IntentExplain  IntentType = "EXPLAIN"
)

// KnownIntents lists every recognized intent. Retrieval validates
// against this set before building a query.
func KnownIntents() []IntentType {
	return []IntentType{IntentGenerate, IntentDebug, IntentRefactor, IntentExplain}
}

// Valid reports whether the intent is a recognized variant.
func (i IntentType) Valid() bool {
	switch i {
	case IntentGenerate, IntentDebug, IntentRefactor, IntentExplain:
		return true
	}
	return false
}

// ComplexityLevel classifies how involved an improvement request is.
type ComplexityLevel string

const (
	ComplexitySimple   ComplexityLevel = "SIMPLE"
	ComplexityModerate ComplexityLevel = "MODERATE"
	ComplexityComplex  ComplexityLevel = "COMPLEX"
)

// Valid reports whether the level is a recognized variant.
func (c ComplexityLevel) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	}
	return false
}

// ImproveRequest is the inbound request for one improvement run.
type ImproveRequest struct {
	Idea       string   `json:"idea" validate:"required"`
	Context    string   `json:"context,omitempty"`
	Guardrails []string `json:"guardrails,omitempty"`
	Mode       string   `json:"mode,omitempty" validate:"omitempty,oneof=legacy nlac"`
}

// FewShotExample is the retrieval view of a catalog exemplar, ready to be
// injected into a prompt template.
type FewShotExample struct {
	InputIdea      string
	InputContext   string
	ImprovedPrompt string
	Role           string
	Directive      string
	Framework      string
	Guardrails     []string
	ExpectedOutput string
	Similarity     float64
}

// Constraints are the hard requirements an optimized prompt must satisfy.
type Constraints struct {
	MaxTokens          int    `json:"max_tokens"`
	Format             string `json:"format,omitempty"`
	IncludeExamples    bool   `json:"include_examples"`
	IncludeExplanation bool   `json:"include_explanation"`
}

// PromptObject is the unit of work flowing through the NLaC pipeline.
// It is immutable: refinement produces a new instance via WithTemplate.
type PromptObject struct {
	ID           string
	Version      int
	IntentType   IntentType
	Template     string
	StrategyMeta map[string]any
	Constraints  Constraints
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WithTemplate returns a copy of the prompt object carrying a refined
// template. The version is bumped and UpdatedAt refreshed; the original
// is left untouched.
func (p PromptObject) WithTemplate(template string) PromptObject {
	next := p
	next.Template = template
	next.Version = p.Version + 1
	next.UpdatedAt = time.Now().UTC()

	next.StrategyMeta = make(map[string]any, len(p.StrategyMeta))
	for k, v := range p.StrategyMeta {
		next.StrategyMeta[k] = v
	}
	return next
}

// MetaString returns a string strategy_meta value, or "" when absent.
func (p PromptObject) MetaString(key string) string {
	if v, ok := p.StrategyMeta[key].(string); ok {
		return v
	}
	return ""
}

// Prediction is the outward result of a strategy's improve operation.
type Prediction struct {
	ImprovedPrompt string   `json:"improved_prompt"`
	Role           string   `json:"role"`
	Directive      string   `json:"directive"`
	Framework      string   `json:"framework"`
	Guardrails     []string `json:"guardrails"`
	Reasoning      string   `json:"reasoning,omitempty"`
	Confidence     float64  `json:"confidence"`
}

// OPROIteration records one step of the optimizer trajectory.
type OPROIteration struct {
	IterationNumber      int     `json:"iteration_number"`
	MetaPromptUsed       string  `json:"meta_prompt_used"`
	GeneratedInstruction string  `json:"generated_instruction"`
	Score                float64 `json:"score"`
	Feedback             string  `json:"feedback"`
}

// KNNFailure summarizes retrieval failures observed during an optimizer
// run. Retrieval failures never abort the run; they surface here and as
// degradation flags.
type KNNFailure struct {
	FailureCount int    `json:"failure_count"`
	CallCount    int    `json:"call_count"`
	ErrorType    string `json:"error_type"`
}

// OptimizeResponse is the final output of an OPRO run.
type OptimizeResponse struct {
	PromptID         string          `json:"prompt_id"`
	FinalInstruction string          `json:"final_instruction"`
	FinalScore       float64         `json:"final_score"`
	IterationCount   int             `json:"iteration_count"`
	EarlyStopped     bool            `json:"early_stopped"`
	Trajectory       []OPROIteration `json:"trajectory"`
	KNNFailure       *KNNFailure     `json:"knn_failure,omitempty"`
	Backend          string          `json:"backend"`
	Model            string          `json:"model"`
}

// ImprovedPrompt is an alias of FinalInstruction kept for API
// compatibility with older consumers.
func (o OptimizeResponse) ImprovedPrompt() string {
	return o.FinalInstruction
}

// ConstraintOutcome is the per-constraint detail of a validation run.
type ConstraintOutcome struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// ValidationResult is the outcome of scoring a prompt against the
// validator's constraint set.
type ValidationResult struct {
	Score   float64                      `json:"score"`
	Passed  bool                         `json:"passed"`
	Details map[string]ConstraintOutcome `json:"details"`
}
