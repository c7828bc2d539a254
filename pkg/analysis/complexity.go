// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package analysis classifies improvement requests by complexity and
// intent. Both classifiers are pure functions over the combined
// idea + context text; identical inputs always produce identical
// results.
package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

const (
	// Inputs longer than this bypass scoring and classify as COMPLEX.
	autoComplexChars = 300

	shortInputChars  = 50
	mediumInputChars = 150

	simpleUpperBound   = 0.25
	moderateUpperBound = 0.60

	weightLength    = 0.40
	weightTechnical = 0.30
	weightStructure = 0.20
	weightContext   = 0.10
)

// technicalTerms are matched with word boundaries: "api" never matches
// inside "capacity". Spanish infrastructure vocabulary is included
// alongside English because the request surface accepts both.
var technicalTerms = []string{
	"api", "database", "sql", "orm", "cache", "queue", "async",
	"concurrency", "thread", "mutex", "algorithm", "regex",
	"microservice", "middleware", "framework", "backend", "frontend",
	"endpoint", "schema", "authentication", "encryption", "oauth",
	"kubernetes", "docker", "deployment", "pipeline", "compiler",
	"runtime", "websocket", "grpc", "graphql", "nlac",
	"system", "sistema", "architecture", "arquitectura",
}

var technicalTermPattern = regexp.MustCompile(
	`(?i)\b(` + strings.Join(technicalTerms, "|") + `)\b`)

// ComplexityBreakdown exposes the individual sub-scores for diagnostics
// and strategy metadata.
type ComplexityBreakdown struct {
	Length    float64
	Technical float64
	Structure float64
	Context   float64
	Score     float64
}

// AnalyzeComplexity classifies the request as SIMPLE, MODERATE or
// COMPLEX. Inputs longer than 300 characters are always COMPLEX.
func AnalyzeComplexity(idea, context string) types.ComplexityLevel {
	combined := combinedText(idea, context)
	if utf8.RuneCountInString(combined) > autoComplexChars {
		return types.ComplexityComplex
	}

	score := ComplexityScore(idea, context).Score
	switch {
	case score < simpleUpperBound:
		return types.ComplexitySimple
	case score < moderateUpperBound:
		return types.ComplexityModerate
	default:
		return types.ComplexityComplex
	}
}

// ComplexityScore computes the weighted sub-scores without applying the
// long-input bypass.
func ComplexityScore(idea, context string) ComplexityBreakdown {
	combined := combinedText(idea, context)

	b := ComplexityBreakdown{
		Length:    lengthScore(combined),
		Technical: technicalScore(combined),
		Structure: structureScore(combined),
	}
	if strings.TrimSpace(context) != "" {
		b.Context = 1.0
	}

	b.Score = weightLength*b.Length +
		weightTechnical*b.Technical +
		weightStructure*b.Structure +
		weightContext*b.Context
	return b
}

func combinedText(idea, context string) string {
	return strings.TrimSpace(idea + " " + context)
}

func lengthScore(text string) float64 {
	n := utf8.RuneCountInString(text)
	switch {
	case n <= shortInputChars:
		return 0.0
	case n <= mediumInputChars:
		return 0.5
	default:
		return 1.0
	}
}

func technicalScore(text string) float64 {
	count := len(technicalTermPattern.FindAllString(text, -1))
	score := 0.5 * float64(count)
	if score > 1.0 {
		return 1.0
	}
	return score
}

func structureScore(text string) float64 {
	count := 0
	for _, r := range text {
		switch r {
		case '.', ',', ';':
			count++
		}
	}
	score := 0.1 * float64(count)
	if score > 1.0 {
		return 1.0
	}
	return score
}
