// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package catalog loads the exemplar catalog that seeds few-shot
// retrieval. Repositories are pure I/O: they read and decode the
// artifact but leave skip policy to the retrieval layer.
package catalog

import (
	"encoding/json"
)

// Exemplar is one curated improvement pair from the catalog. Exemplars
// are immutable after load and live for the process lifetime.
type Exemplar struct {
	InputIdea      string         `json:"input_idea"`
	InputContext   string         `json:"input_context"`
	ImprovedPrompt string         `json:"improved_prompt"`
	Role           string         `json:"role"`
	Directive      string         `json:"directive"`
	Framework      string         `json:"framework"`
	Guardrails     []string       `json:"guardrails"`
	ExpectedOutput *string        `json:"expected_output"`
	Metadata       map[string]any `json:"metadata"`
}

// HasExpectedOutput reports whether the exemplar carries a non-null
// expected output, which marks it usable for REFACTOR retrieval.
func (e Exemplar) HasExpectedOutput() bool {
	return e.ExpectedOutput != nil && *e.ExpectedOutput != ""
}

// SearchText is the text retrieval vectorizes for this exemplar.
func (e Exemplar) SearchText() string {
	if e.InputContext == "" {
		return e.InputIdea
	}
	return e.InputIdea + " " + e.InputContext
}

// Document is a raw catalog entry prior to validation.
type Document = json.RawMessage
