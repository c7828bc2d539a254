// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package ifeval

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMinLength(t *testing.T) {
	c := MinLength{MinChars: 50}

	ok, _ := c.Check(strings.Repeat("a", 50))
	assert.True(t, ok)

	ok, reason := c.Check("  " + strings.Repeat("a", 49) + "  ")
	assert.False(t, ok, "trimmed length counts")
	assert.NotEmpty(t, reason)
}

func TestActionVerbs(t *testing.T) {
	tests := []struct {
		prompt string
		want   bool
	}{
		{"Create a REST endpoint", true},
		{"implement the parser", true},
		{"WRITE the docs", true},
		{"additional notes on the writer", false}, // no whole-word match
		{"describe the architecture", false},
	}
	for _, tt := range tests {
		ok, _ := ActionVerbs{}.Check(tt.prompt)
		assert.Equal(t, tt.want, ok, tt.prompt)
	}
}

func TestJSONFormatPermissive(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   bool
	}{
		{"plain prose passes", "write a function", true},
		{"valid json passes", `{"task": "write a function"}`, true},
		{"broken json fails", `{"task": `, false},
		{"broken array fails", `[1, 2,`, false},
		{"empty passes", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := JSONFormat{}.Check(tt.prompt)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestValidateScoreBounds(t *testing.T) {
	v := NewValidator(ValidatorConfig{Logger: zap.NewNop()})

	prompts := []string{
		"",
		"Hi",
		`{"broken": `,
		"Create a comprehensive implementation plan for the email validator module.",
		"describe something at length, but without any of the recognized verbs in it anywhere",
	}
	for _, p := range prompts {
		res := v.Validate(p)
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 1.0)
		assert.Equal(t, res.Score >= v.Threshold(), res.Passed,
			"passed must equal score >= threshold for %q", p)
		assert.Len(t, res.Details, 3)
	}
}

func TestValidateDetailsKeys(t *testing.T) {
	v := NewValidator(ValidatorConfig{Logger: zap.NewNop()})
	res := v.Validate("Hi")

	require.Contains(t, res.Details, "constraint_1")
	require.Contains(t, res.Details, "constraint_2")
	require.Contains(t, res.Details, "constraint_3")
	assert.False(t, res.Details["constraint_1"].Passed)
	assert.NotEmpty(t, res.Details["constraint_1"].Reason)
}

func TestValidatePerfectPrompt(t *testing.T) {
	v := NewValidator(ValidatorConfig{Logger: zap.NewNop()})
	res := v.Validate("Create a well-documented Go package that implements an email validator with tests.")
	assert.Equal(t, 1.0, res.Score)
	assert.True(t, res.Passed)
}

func TestThresholdFallbacks(t *testing.T) {
	logger := zap.NewNop()

	assert.Equal(t, DefaultThreshold, LoadThreshold("", logger))
	assert.Equal(t, DefaultThreshold, LoadThreshold("/nonexistent/calibration.json", logger))

	dir := t.TempDir()

	malformed := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(malformed, []byte("{not json"), 0o644))
	assert.Equal(t, DefaultThreshold, LoadThreshold(malformed, logger))

	outOfRange := filepath.Join(dir, "range.json")
	require.NoError(t, os.WriteFile(outOfRange, []byte(`{"calibrated_threshold": 1.7}`), 0o644))
	assert.Equal(t, DefaultThreshold, LoadThreshold(outOfRange, logger))
}

func TestCalibrationRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	cal := Calibration{
		CalibratedThreshold: 0.65,
		Statistics:          map[string]any{"mean": 0.71},
	}
	require.NoError(t, WriteCalibration(path, cal))

	v := NewValidator(ValidatorConfig{
		CalibrationPath: path,
		Logger:          zap.NewNop(),
	})
	assert.Equal(t, 0.65, v.Threshold())
}

func TestWriteCalibrationRejectsBadThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	assert.Error(t, WriteCalibration(path, Calibration{CalibratedThreshold: 0}))
	assert.Error(t, WriteCalibration(path, Calibration{CalibratedThreshold: 1.5}))
}
