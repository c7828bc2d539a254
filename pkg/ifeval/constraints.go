// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package ifeval scores prompts against a composable set of constraint
// predicates and a calibrated pass threshold.
package ifeval

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Constraint is one verifiable predicate over a prompt string.
type Constraint interface {
	// Name identifies the constraint in validation details.
	Name() string

	// Check returns whether the prompt satisfies the constraint and a
	// short reason when it does not.
	Check(prompt string) (bool, string)
}

// DefaultMinChars is the minimum trimmed prompt length the default
// constraint set requires.
const DefaultMinChars = 50

// MinLength requires the trimmed prompt to reach a character floor.
type MinLength struct {
	MinChars int
}

func (c MinLength) Name() string { return "min_length" }

func (c MinLength) Check(prompt string) (bool, string) {
	minChars := c.MinChars
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	n := utf8.RuneCountInString(strings.TrimSpace(prompt))
	if n < minChars {
		return false, fmt.Sprintf("prompt is %d chars, minimum is %d", n, minChars)
	}
	return true, ""
}

var actionVerbPattern = regexp.MustCompile(
	`(?i)\b(create|implement|write|build|develop|add)\b`)

// ActionVerbs requires at least one imperative verb so the prompt asks
// for something concrete.
type ActionVerbs struct{}

func (ActionVerbs) Name() string { return "action_verbs" }

func (ActionVerbs) Check(prompt string) (bool, string) {
	if !actionVerbPattern.MatchString(prompt) {
		return false, "prompt contains no action verb"
	}
	return true, ""
}

// JSONFormat is permissive: prompts that do not look like JSON pass;
// prompts that look like JSON must parse.
type JSONFormat struct{}

func (JSONFormat) Name() string { return "json_format" }

func (JSONFormat) Check(prompt string) (bool, string) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return true, ""
	}
	if !json.Valid([]byte(trimmed)) {
		return false, "prompt looks like JSON but does not parse"
	}
	return true, ""
}

// DefaultConstraints returns the mandatory constraint set.
func DefaultConstraints() []Constraint {
	return []Constraint{
		MinLength{MinChars: DefaultMinChars},
		ActionVerbs{},
		JSONFormat{},
	}
}
