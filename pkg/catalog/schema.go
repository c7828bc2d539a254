// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// exemplarSchema is the contract a catalog document must satisfy
// before it can seed retrieval. Entries that fail it are skipped, not
// fatal; skip-rate policy lives in the retrieval layer.
const exemplarSchema = `{
  "type": "object",
  "required": ["input_idea", "improved_prompt"],
  "properties": {
    "input_idea":      {"type": "string", "minLength": 1},
    "input_context":   {"type": "string"},
    "improved_prompt": {"type": "string", "minLength": 1},
    "role":            {"type": "string"},
    "directive":       {"type": "string"},
    "framework":       {"type": "string"},
    "guardrails":      {"type": "array", "items": {"type": "string"}},
    "expected_output": {"type": ["string", "null"]},
    "metadata":        {"type": "object"}
  }
}`

var (
	schemaOnce   sync.Once
	schemaLoaded *gojsonschema.Schema
	schemaErr    error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaLoaded, schemaErr = gojsonschema.NewSchema(
			gojsonschema.NewStringLoader(exemplarSchema))
	})
	return schemaLoaded, schemaErr
}

// ValidateDocument checks a raw catalog document against the exemplar
// schema. Returns nil when the document is usable.
func ValidateDocument(doc Document) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("exemplar schema failed to compile: %w", err)
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("document violates exemplar schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// ParseExemplar decodes a validated document into an Exemplar.
func ParseExemplar(doc Document) (Exemplar, error) {
	var ex Exemplar
	if err := json.Unmarshal(doc, &ex); err != nil {
		return Exemplar{}, fmt.Errorf("failed to decode exemplar: %w", err)
	}
	return ex, nil
}
