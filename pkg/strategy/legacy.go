// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/analysis"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// roleForIntent maps each intent to the persona the improved prompt
// opens with.
var roleForIntent = map[types.IntentType]string{
	types.IntentGenerate: "expert prompt engineer",
	types.IntentDebug:    "senior debugging specialist",
	types.IntentRefactor: "software architecture reviewer",
	types.IntentExplain:  "technical educator",
}

// RoleForIntent returns the persona used for an intent's prompts.
func RoleForIntent(intent types.IntentType) string {
	if role, ok := roleForIntent[intent]; ok {
		return role
	}
	return roleForIntent[types.IntentGenerate]
}

// legacyStrategy is the shared machinery behind the three complexity
// tiers. Each tier differs in template scaffold, length bound and
// guardrail set.
type legacyStrategy struct {
	name       string
	maxChars   int
	addSuffix  bool
	framework  string
	confidence float64
	guardrails []string
	scaffold   func(role, idea, userContext string) string
}

// NewSimple returns the strategy for short, direct requests.
func NewSimple() Strategy {
	return &legacyStrategy{
		name:       "simple",
		maxChars:   SimpleMaxChars,
		addSuffix:  true,
		framework:  "zero-shot",
		confidence: 0.70,
		guardrails: []string{
			"be concise",
			"answer directly",
			"no speculation",
		},
		scaffold: simpleScaffold,
	}
}

// NewModerate returns the strategy for mid-complexity requests.
func NewModerate() Strategy {
	return &legacyStrategy{
		name:       "moderate",
		maxChars:   ModerateMaxChars,
		framework:  "chain-of-thought",
		confidence: 0.75,
		guardrails: []string{
			"reason step by step",
			"state assumptions explicitly",
			"cover edge cases",
			"keep the answer actionable",
		},
		scaffold: moderateScaffold,
	}
}

// NewComplex returns the strategy for long or highly technical
// requests.
func NewComplex() Strategy {
	return &legacyStrategy{
		name:       "complex",
		maxChars:   ComplexMaxChars,
		framework:  "decomposition",
		confidence: 0.80,
		guardrails: []string{
			"decompose the problem before solving",
			"reason step by step",
			"state assumptions explicitly",
			"cover edge cases and failure modes",
			"summarize trade-offs at the end",
		},
		scaffold: complexScaffold,
	}
}

func (s *legacyStrategy) Name() string { return s.name }

func (s *legacyStrategy) Improve(ctx context.Context, req Request) (result.Result[types.Prediction], error) {
	if err := ctx.Err(); err != nil {
		return result.Result[types.Prediction]{}, err
	}
	if strings.TrimSpace(req.Idea) == "" {
		return result.Err[types.Prediction](result.NewValidationError(
			"idea must be a non-empty string", nil)), nil
	}

	intent := analysis.ClassifyIntent(req.Idea, req.Context)
	role := roleForIntent[intent]

	template := s.scaffold(role, req.Idea, req.Context)
	template += guardrailsSection(req.Guardrails)
	template = Truncate(template, s.maxChars, s.addSuffix)

	return result.Ok(types.Prediction{
		ImprovedPrompt: template,
		Role:           role,
		Directive:      fmt.Sprintf("%s + %s", s.name, intent),
		Framework:      s.framework,
		Guardrails:     mergeGuardrails(s.guardrails, req.Guardrails),
		Confidence:     s.confidence,
	}), nil
}

// maxGuardrails bounds the outward guardrail list.
const maxGuardrails = 5

// mergeGuardrails appends caller-supplied guardrails to the tier's own
// set, keeping the list within the contract bound.
func mergeGuardrails(base, extra []string) []string {
	out := append([]string(nil), base...)
	for _, g := range extra {
		if len(out) == maxGuardrails {
			break
		}
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// guardrailsSection renders caller-supplied guardrails as a template
// section, or nothing when there are none.
func guardrailsSection(guardrails []string) string {
	rendered := false
	var b strings.Builder
	for _, g := range guardrails {
		if g = strings.TrimSpace(g); g == "" {
			continue
		}
		if !rendered {
			b.WriteString("\n\n# Guardrails\n")
			rendered = true
		}
		fmt.Fprintf(&b, "- %s\n", g)
	}
	return b.String()
}

func simpleScaffold(role, idea, userContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s.\n\n", role)
	fmt.Fprintf(&b, "# Task\n%s\n", idea)
	if ctx := strings.TrimSpace(userContext); ctx != "" {
		fmt.Fprintf(&b, "\n# Context\n%s\n", ctx)
	}
	b.WriteString("\nRespond directly and concisely.")
	return b.String()
}

func moderateScaffold(role, idea, userContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s.\n\n", role)
	fmt.Fprintf(&b, "# Task\n%s\n", idea)
	if ctx := strings.TrimSpace(userContext); ctx != "" {
		fmt.Fprintf(&b, "\n# Context\n%s\n", ctx)
	}
	b.WriteString("\n# Approach\n")
	b.WriteString("Think through the task step by step before answering. ")
	b.WriteString("State any assumptions you make.\n")
	b.WriteString("\n# Requirements\n")
	b.WriteString("- Cover the main case and the edge cases.\n")
	b.WriteString("- Keep the result actionable.\n")
	return b.String()
}

func complexScaffold(role, idea, userContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s.\n\n", role)
	fmt.Fprintf(&b, "# Task\n%s\n", idea)
	if ctx := strings.TrimSpace(userContext); ctx != "" {
		fmt.Fprintf(&b, "\n# Context\n%s\n", ctx)
	}
	b.WriteString("\n# Approach\n")
	b.WriteString("1. Decompose the task into independent sub-problems.\n")
	b.WriteString("2. Solve each sub-problem, reasoning step by step.\n")
	b.WriteString("3. Integrate the partial solutions and check them against the task.\n")
	b.WriteString("\n# Requirements\n")
	b.WriteString("- Make assumptions explicit and justify them.\n")
	b.WriteString("- Cover failure modes, not just the happy path.\n")
	b.WriteString("- Close with a short summary of trade-offs.\n")
	return b.String()
}
