// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package result

import (
	"fmt"
	"regexp"
	"runtime"
	"sort"
	"sync"
)

// Error codes. Codes are stable API; the registry assigns each a unique
// PREFIX-NNN identifier that appears in server logs.
const (
	CodeLLMConnectionFailed      = "LLM_CONNECTION_FAILED"
	CodeLLMTimeout               = "LLM_TIMEOUT"
	CodeLLMUnknownError          = "LLM_UNKNOWN_ERROR"
	CodeLLMProviderUnavailable   = "LLM_PROVIDER_UNAVAILABLE"
	CodeCacheConstraintViolation = "CACHE_CONSTRAINT_VIOLATION"
	CodeCacheOperationFailed     = "CACHE_OPERATION_FAILED"
	CodeDBOperationalError       = "DB_OPERATIONAL_ERROR"
	CodeDBCorruption             = "DB_CORRUPTION"
	CodeDBPermissionDenied       = "DB_PERMISSION_DENIED"
	CodeFileNotFound             = "FILE_NOT_FOUND"
	CodeFilePermissionDenied     = "FILE_PERMISSION_DENIED"
	CodeDataCorruption           = "DATA_CORRUPTION"
	CodeValidationError          = "VALIDATION_ERROR"
)

// ErrorIDPattern is the shape every registered ID must match.
var ErrorIDPattern = regexp.MustCompile(`^[A-Z]+-\d+$`)

// Registry maps error codes to their unique PREFIX-NNN identifiers. It
// is a process-wide value initialized at first access and never mutated
// afterwards.
type Registry struct {
	ids map[string]string
}

var (
	registryOnce sync.Once
	registry     *Registry
)

// GetRegistry returns the process-wide error ID registry.
func GetRegistry() *Registry {
	registryOnce.Do(func() {
		registry = newRegistry()
	})
	return registry
}

func newRegistry() *Registry {
	ids := map[string]string{
		CodeLLMConnectionFailed:      "LLM-001",
		CodeLLMTimeout:               "LLM-002",
		CodeLLMUnknownError:          "LLM-003",
		CodeLLMProviderUnavailable:   "LLM-004",
		CodeCacheConstraintViolation: "CACHE-001",
		CodeCacheOperationFailed:     "CACHE-002",
		CodeDBOperationalError:       "DB-001",
		CodeDBCorruption:             "DB-002",
		CodeDBPermissionDenied:       "DB-003",
		CodeFileNotFound:             "FILE-001",
		CodeFilePermissionDenied:     "FILE-002",
		CodeDataCorruption:           "DATA-001",
		CodeValidationError:          "VAL-001",
	}

	// Uniqueness and shape are invariants of the static table.
	seen := map[string]string{}
	for code, id := range ids {
		if !ErrorIDPattern.MatchString(id) {
			panic(fmt.Sprintf("error id %q for %s does not match PREFIX-NNN", id, code))
		}
		if prev, dup := seen[id]; dup {
			panic(fmt.Sprintf("duplicate error id %q (%s and %s)", id, prev, code))
		}
		seen[id] = code
	}

	return &Registry{ids: ids}
}

// ErrorID looks up the registered ID for a code.
func (r *Registry) ErrorID(code string) (string, bool) {
	id, ok := r.ids[code]
	return id, ok
}

// Contains reports whether the given ID belongs to the registry.
func (r *Registry) Contains(id string) bool {
	for _, v := range r.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Codes returns all registered codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.ids))
	for c := range r.ids {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// MustErrorID returns the registered ID for a code, panicking on a
// miss. An unregistered code is a programmer bug, not a runtime error.
func MustErrorID(code string) string {
	id, ok := GetRegistry().ErrorID(code)
	if !ok {
		panic(fmt.Sprintf("error code %q is not registered", code))
	}
	return id
}

// captureStack records up to 10 frames above the given skip depth.
func captureStack(skip int) []string {
	pcs := make([]uintptr, 10)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	out := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		out = append(out, fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line))
		if !more || len(out) == 10 {
			break
		}
	}
	return out
}
