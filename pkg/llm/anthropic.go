// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// DefaultAnthropicModel is used when no model is configured.
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	// DefaultMaxTokens bounds completion length per call.
	DefaultMaxTokens = 4096
	// DefaultTimeout bounds each Generate call.
	DefaultTimeout = 60 * time.Second
)

// AnthropicConfig configures the Anthropic adapter.
type AnthropicConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Anthropic adapts the Anthropic messages API to the Client contract.
type Anthropic struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

// NewAnthropic creates an Anthropic-backed client. The API key falls
// back to the ANTHROPIC_API_KEY environment variable.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		if envModel := os.Getenv("ANTHROPIC_DEFAULT_MODEL"); envModel != "" {
			cfg.Model = envModel
		} else {
			cfg.Model = DefaultAnthropicModel
		}
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Anthropic{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

// Provider implements Client.
func (a *Anthropic) Provider() string { return "anthropic" }

// Model implements Client.
func (a *Anthropic) Model() string { return a.model }

// Generate implements Client. Each call carries its own deadline so a
// stalled request cannot hold the pipeline.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.temperature > 0 {
		params.Temperature = anthropic.Float(a.temperature)
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic generate failed: %w", err)
	}

	var out string
	for _, block := range message.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}
