// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package llm defines the text-generation client contract and its
// concrete adapters. The rest of the pipeline depends only on the
// Client interface and never assumes the provider is available.
package llm

import (
	"context"
)

// Client generates text from a prompt. Implementations must respect
// context cancellation and bound every call with a deadline.
type Client interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Provider names the backing service ("anthropic", ...).
	Provider() string

	// Model names the configured model.
	Model() string
}
