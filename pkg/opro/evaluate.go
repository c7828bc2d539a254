// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package opro

import (
	"fmt"
	"strings"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// minQualityChars is the trimmed length below which a template fails
// the basic quality check.
const minQualityChars = 50

// tokensPerChar approximates provider tokenization: one token per four
// characters, rounded up.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// evaluate scores a candidate template as the fraction of applicable
// constraint checks it passes. Feedback strings name each failed check
// so the next iteration can address them.
func evaluate(template string, c types.Constraints) (float64, string) {
	total := 0
	passed := 0
	var failures []string

	check := func(ok bool, feedback string) {
		total++
		if ok {
			passed++
		} else {
			failures = append(failures, feedback)
		}
	}

	if c.MaxTokens > 0 {
		check(estimateTokens(template) <= c.MaxTokens, "template too long")
	}
	if strings.Contains(strings.ToLower(c.Format), "code") {
		check(hasCodeMarker(template), "missing code block")
	}
	if c.IncludeExamples {
		check(strings.Contains(strings.ToLower(template), "example"), "missing examples")
	}
	if c.IncludeExplanation {
		check(hasExplanatorySentence(template), "missing explanation")
	}
	check(len(strings.TrimSpace(template)) > minQualityChars, "template too short")

	score := float64(passed) / float64(total)
	return score, strings.Join(failures, "; ")
}

func hasCodeMarker(template string) bool {
	return strings.Contains(template, "```") ||
		strings.Contains(template, "<code>")
}

// hasExplanatorySentence requires at least one sentence longer than 30
// characters beyond the first sentence.
func hasExplanatorySentence(template string) bool {
	sentences := strings.Split(template, ".")
	for i, s := range sentences {
		if i == 0 {
			continue
		}
		if len(strings.TrimSpace(s)) > 30 {
			return true
		}
	}
	return false
}

// simpleRefinement deterministically patches the candidate to address
// constraint-driven gaps. It never pads length: a template that is too
// short stays short, keeping the deterministic branch honest about
// low-content input.
func simpleRefinement(template string, c types.Constraints) string {
	refined := template

	if strings.Contains(strings.ToLower(c.Format), "code") && !hasCodeMarker(refined) {
		refined += "\n\nWrap code in ``` fences."
	}
	if c.IncludeExamples && !strings.Contains(strings.ToLower(refined), "example") {
		refined += "\n\n# Examples\nInclude at least one concrete example."
	}
	if c.IncludeExplanation && !hasExplanatorySentence(refined) {
		refined += "\n\nExplain the reasoning behind each step in full sentences."
	}
	if c.MaxTokens > 0 && estimateTokens(refined) > c.MaxTokens {
		refined = refined[:c.MaxTokens*4]
	}
	return refined
}

// buildMetaPrompt asks the model for a refined instruction given the
// original and the accumulated feedback.
func buildMetaPrompt(original string, feedback []string) string {
	var b strings.Builder
	b.WriteString("You are optimizing a prompt instruction.\n\n")
	fmt.Fprintf(&b, "Original instruction:\n%s\n", original)
	if len(feedback) > 0 {
		b.WriteString("\nPrevious attempts failed these checks:\n")
		for _, f := range feedback {
			if f == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	b.WriteString("\nRewrite the instruction to pass every check. Return only the rewritten instruction.")
	return b.String()
}
