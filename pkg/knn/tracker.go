// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package knn

import (
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// FailureTracker counts retrieval outcomes within a single improvement
// run. Retrieval failures never abort the caller; the tracker turns
// them into degradation metadata instead. One tracker per run; it is
// not safe for concurrent use and does not need to be, because a run's
// pipeline is sequential.
type FailureTracker struct {
	calls     int
	failures  int
	errorType string
}

// NewFailureTracker creates an empty tracker.
func NewFailureTracker() *FailureTracker {
	return &FailureTracker{}
}

// RecordSuccess notes one successful retrieval call.
func (t *FailureTracker) RecordSuccess() {
	t.calls++
}

// RecordFailure notes one failed retrieval call and keeps the most
// recent error type for diagnostics.
func (t *FailureTracker) RecordFailure(errorType string) {
	t.calls++
	t.failures++
	t.errorType = errorType
}

// Failed reports whether any retrieval call failed during the run.
func (t *FailureTracker) Failed() bool {
	return t.failures > 0
}

// Summary returns the failure metadata for the optimizer response, or
// nil when every call succeeded.
func (t *FailureTracker) Summary() *types.KNNFailure {
	if t.failures == 0 {
		return nil
	}
	return &types.KNNFailure{
		FailureCount: t.failures,
		CallCount:    t.calls,
		ErrorType:    t.errorType,
	}
}
