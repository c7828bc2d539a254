// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

func TestAnalyzeComplexityLongInputBypass(t *testing.T) {
	// Exactly 300 characters is scored; 301 bypasses straight to COMPLEX.
	at300 := strings.Repeat("a", 300)
	at301 := strings.Repeat("a", 301)

	assert.NotEqual(t, types.ComplexityComplex, AnalyzeComplexity(at300, ""),
		"300 chars of unstructured text must score, not bypass")
	assert.Equal(t, types.ComplexityComplex, AnalyzeComplexity(at301, ""))
}

func TestAnalyzeComplexityLevels(t *testing.T) {
	tests := []struct {
		name    string
		idea    string
		context string
		want    types.ComplexityLevel
	}{
		{
			name: "short plain request",
			idea: "write a haiku",
			want: types.ComplexitySimple,
		},
		{
			name: "spanish review of nlac system",
			idea: "haz una revisión del sistema NLaC",
			want: types.ComplexityModerate,
		},
		{
			name: "long technical structured request",
			idea: "design a database schema for the api, including a cache layer, " +
				"an async queue, oauth authentication; document the deployment " +
				"pipeline, the kubernetes setup, and the grpc endpoint contracts. " +
				"Cover the middleware, the orm, and the websocket layer.",
			context: "production microservice backend",
			want:    types.ComplexityComplex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeComplexity(tt.idea, tt.context))
		})
	}
}

func TestComplexityScoreWordBoundary(t *testing.T) {
	// "api" inside "capacity" must not count as a technical term.
	b := ComplexityScore("increase the capacity", "")
	assert.Zero(t, b.Technical)

	b = ComplexityScore("increase the api capacity", "")
	assert.Equal(t, 0.5, b.Technical)
}

func TestComplexityScoreComponents(t *testing.T) {
	b := ComplexityScore("short", "")
	assert.Zero(t, b.Length)
	assert.Zero(t, b.Context)

	b = ComplexityScore(strings.Repeat("x", 100), "some context")
	assert.Equal(t, 0.5, b.Length)
	assert.Equal(t, 1.0, b.Context)

	// Punctuation drives structure: 3 marks -> 0.3.
	b = ComplexityScore("first. second, third;", "")
	assert.InDelta(t, 0.3, b.Structure, 1e-9)

	// Whitespace-only context does not count.
	b = ComplexityScore("anything", "   ")
	assert.Zero(t, b.Context)
}

func TestComplexityScoreCaps(t *testing.T) {
	// Three or more terms cap the technical sub-score at 1.0.
	b := ComplexityScore("api database cache queue", "")
	assert.Equal(t, 1.0, b.Technical)

	// Eleven punctuation marks cap structure at 1.0.
	b = ComplexityScore(strings.Repeat(".", 11), "")
	assert.Equal(t, 1.0, b.Structure)
}

func TestAnalyzeComplexityIsPure(t *testing.T) {
	first := AnalyzeComplexity("optimize the database layer", "go service")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, AnalyzeComplexity("optimize the database layer", "go service"))
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name string
		idea string
		want types.IntentType
	}{
		{"explain keyword", "explain this function", types.IntentExplain},
		{"spanish review", "haz una revisión del sistema NLaC", types.IntentExplain},
		{"spanish audit", "auditoría de seguridad", types.IntentExplain},
		{"spanish analyze", "analizar el rendimiento", types.IntentExplain},
		{"how does phrase", "how does the scheduler work", types.IntentExplain},
		{"debug keyword", "fix the login bug", types.IntentDebug},
		{"exception keyword", "the service throws an exception", types.IntentDebug},
		{"refactor keyword", "refactor the payment module", types.IntentRefactor},
		{"clean up phrase", "clean up the handlers", types.IntentRefactor},
		{"default", "write a poem about autumn", types.IntentGenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.idea, ""))
		})
	}
}

func TestClassifyIntentPrecedence(t *testing.T) {
	// EXPLAIN outranks DEBUG outranks REFACTOR.
	assert.Equal(t, types.IntentExplain, ClassifyIntent("explain and fix the bug", ""))
	assert.Equal(t, types.IntentDebug, ClassifyIntent("fix then refactor this", ""))
}

func TestClassifyIntentWordBoundary(t *testing.T) {
	// "bug" inside "bugle" and "fix" inside "prefix" must not match.
	assert.Equal(t, types.IntentGenerate, ClassifyIntent("compose a bugle call with a prefix", ""))
}

func TestClassifyIntentUsesContext(t *testing.T) {
	assert.Equal(t, types.IntentDebug, ClassifyIntent("the checkout flow", "it is failing in production"))
}
