// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package strategy routes improvement requests to one of the prompt
// improvement strategies and defines their shared contract. Three
// legacy strategies cover the complexity tiers; the unified strategy
// that composes retrieval and optimization plugs in through the same
// interface.
package strategy

import (
	"context"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// Request carries one improvement request into a strategy. Guardrails
// are caller-supplied constraints rendered into the improved prompt.
type Request struct {
	Idea       string
	Context    string
	Guardrails []string
}

// Strategy is one way of turning a raw idea into an improved prompt.
// Implementations must propagate context cancellation unchanged.
type Strategy interface {
	// Name identifies the strategy in logs and metadata.
	Name() string

	// Improve turns the request into a Prediction. Domain failures and
	// degradation flags ride the Result; cancellation comes back as the
	// raw context error.
	Improve(ctx context.Context, req Request) (result.Result[types.Prediction], error)
}

// Output length bounds per strategy tier.
const (
	SimpleMaxChars   = 800
	ModerateMaxChars = 2000
	ComplexMaxChars  = 5000
)

// truncateFloor is the fraction of the bound below which a sentence or
// line break is too early to be a useful cut point.
const truncateFloor = 0.7

// Truncate bounds text to maxLen characters, preferring to cut at a
// sentence end, then at a line break, provided the cut point lands in
// the last 30% of the budget. The "..." suffix is appended only on a
// hard cut with addSuffix set.
func Truncate(text string, maxLen int, addSuffix bool) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := runes[:maxLen]
	floor := int(truncateFloor * float64(maxLen))

	if idx := lastIndexRune(cut, '.'); idx >= floor {
		return string(cut[:idx+1])
	}
	if idx := lastIndexRune(cut, '\n'); idx >= floor {
		return string(cut[:idx])
	}
	if addSuffix {
		return string(cut) + "..."
	}
	return string(cut)
}

func lastIndexRune(runes []rune, target rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == target {
			return i
		}
	}
	return -1
}
