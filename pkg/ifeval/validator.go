// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package ifeval

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// Validator scores prompts against its constraint set. It is immutable
// after construction and safe for concurrent use.
type Validator struct {
	constraints []Constraint
	threshold   float64
	logger      *zap.Logger
}

// ValidatorConfig configures a Validator. Zero values fall back to the
// default constraint set and threshold.
type ValidatorConfig struct {
	// Constraints defaults to DefaultConstraints().
	Constraints []Constraint

	// CalibrationPath optionally points at a calibration artifact; a
	// missing or malformed file silently falls back to the default
	// threshold.
	CalibrationPath string

	// Threshold overrides the calibrated threshold when non-zero.
	Threshold float64

	Logger *zap.Logger
}

// NewValidator builds a validator, resolving the pass threshold from
// the explicit override, the calibration artifact, or the default, in
// that order.
func NewValidator(cfg ValidatorConfig) *Validator {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Logger()
	}

	constraints := cfg.Constraints
	if len(constraints) == 0 {
		constraints = DefaultConstraints()
	}

	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = LoadThreshold(cfg.CalibrationPath, logger)
	}

	return &Validator{
		constraints: constraints,
		threshold:   threshold,
		logger:      logger,
	}
}

// Threshold returns the pass threshold in use.
func (v *Validator) Threshold() float64 { return v.threshold }

// Validate scores the prompt as the fraction of constraints passed.
// Details are keyed constraint_1..constraint_N in constraint order.
func (v *Validator) Validate(prompt string) types.ValidationResult {
	details := make(map[string]types.ConstraintOutcome, len(v.constraints))
	passed := 0
	for i, c := range v.constraints {
		ok, reason := c.Check(prompt)
		if ok {
			passed++
		}
		details[fmt.Sprintf("constraint_%d", i+1)] = types.ConstraintOutcome{
			Passed: ok,
			Reason: reason,
		}
	}

	score := float64(passed) / float64(len(v.constraints))
	return types.ValidationResult{
		Score:   score,
		Passed:  score >= v.threshold,
		Details: details,
	}
}
