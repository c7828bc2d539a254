// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package ifeval

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// DefaultThreshold is used when no calibration artifact is available.
const DefaultThreshold = 0.7

// Calibration is the offline-bootstrap artifact carrying the pass
// threshold plus the score statistics it was derived from.
type Calibration struct {
	CalibratedThreshold float64        `json:"calibrated_threshold"`
	Statistics          map[string]any `json:"statistics,omitempty"`
	Distribution        map[string]any `json:"distribution,omitempty"`
}

// LoadThreshold reads the calibrated threshold from the artifact at
// path. Absent, malformed or out-of-range artifacts silently fall back
// to DefaultThreshold; a missing calibration must never fail a request.
func LoadThreshold(path string, logger *zap.Logger) float64 {
	if path == "" {
		return DefaultThreshold
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("calibration artifact unavailable, using default threshold",
			zap.String("path", path),
			zap.Error(err))
		return DefaultThreshold
	}

	var cal Calibration
	if err := json.Unmarshal(data, &cal); err != nil {
		logger.Warn("calibration artifact malformed, using default threshold",
			zap.String("path", path),
			zap.Error(err))
		return DefaultThreshold
	}

	if cal.CalibratedThreshold <= 0 || cal.CalibratedThreshold > 1 {
		logger.Warn("calibrated threshold out of range, using default",
			zap.Float64("calibrated_threshold", cal.CalibratedThreshold))
		return DefaultThreshold
	}

	logger.Info("calibrated threshold loaded",
		zap.String("path", path),
		zap.Float64("threshold", cal.CalibratedThreshold))
	return cal.CalibratedThreshold
}

// WriteCalibration persists a calibration artifact. Used by the offline
// bootstrap that derives the threshold from a scored corpus.
func WriteCalibration(path string, cal Calibration) error {
	if cal.CalibratedThreshold <= 0 || cal.CalibratedThreshold > 1 {
		return fmt.Errorf("calibrated threshold %.3f out of range (0, 1]", cal.CalibratedThreshold)
	}

	data, err := json.MarshalIndent(cal, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode calibration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write calibration: %w", err)
	}
	return nil
}
