// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package result provides the domain error taxonomy and the
// Success/Failure result wrapper used across the pipeline. Domain
// components return Result values instead of raising; infrastructure
// errors are wrapped into DomainError at the boundary by the mapper.
package result

import (
	"fmt"
	"strings"
)

// ErrorKind is the coarse category a domain error belongs to. Each kind
// has a fixed HTTP mapping at the server boundary.
type ErrorKind string

const (
	KindLLMProvider    ErrorKind = "LLM_PROVIDER"
	KindCacheOperation ErrorKind = "CACHE_OPERATION"
	KindDataCorruption ErrorKind = "DATA_CORRUPTION"
	KindDatabase       ErrorKind = "DATABASE"
	KindFileIO         ErrorKind = "FILE_IO"
	KindValidation     ErrorKind = "VALIDATION"
)

// DomainError is an immutable tagged error. Every instance carries a
// registered error ID (PREFIX-NNN), a human message and a structured
// context map. Construct through the New* helpers or the mapper; do not
// mutate after construction.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	ErrorID string
	Message string
	Context map[string]any

	// Typed fields, populated per subtype.
	Provider   string // LLM errors
	Model      string // LLM errors
	CacheKey   string // cache errors, truncated to 8 chars
	Operation  string // cache and persistence errors
	EntityType string // persistence errors

	// Stack holds a bounded capture of the wrap site (<= 10 frames).
	Stack []string

	cause error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("[%s] %s", e.ErrorID, e.Kind)
	}
	return fmt.Sprintf("[%s] %s", e.ErrorID, e.Message)
}

// Unwrap exposes the original low-level error, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is allows errors.Is comparisons against sentinel kinds via KindError.
func (e *DomainError) Is(target error) bool {
	if ke, ok := target.(kindSentinel); ok {
		return e.Kind == ke.kind
	}
	return false
}

type kindSentinel struct{ kind ErrorKind }

func (k kindSentinel) Error() string { return string(k.kind) }

// KindError returns a sentinel usable with errors.Is to test whether an
// error is a DomainError of the given kind.
func KindError(kind ErrorKind) error {
	return kindSentinel{kind: kind}
}

// newError builds a DomainError for a registered code. Unknown codes
// panic: the registry is static and a miss is a programmer bug.
func newError(kind ErrorKind, code, message string, cause error, context map[string]any) *DomainError {
	id := MustErrorID(code)
	if context == nil {
		context = map[string]any{}
	}
	return &DomainError{
		Kind:    kind,
		Code:    code,
		ErrorID: id,
		Message: message,
		Context: context,
		Stack:   captureStack(3),
		cause:   cause,
	}
}

// NewValidationError builds a VALIDATION error for rejected input.
func NewValidationError(message string, context map[string]any) *DomainError {
	return newError(KindValidation, CodeValidationError, message, nil, context)
}

// NewFileNotFoundError builds a FILE_IO error for a missing artifact.
func NewFileNotFoundError(path string, cause error) *DomainError {
	return newError(KindFileIO, CodeFileNotFound,
		fmt.Sprintf("file not found: %s", path), cause,
		map[string]any{"path": path})
}

// NewDataCorruptionError builds a DATA_CORRUPTION error. The context
// should carry position info (line/column or byte offset) when known.
func NewDataCorruptionError(message string, cause error, context map[string]any) *DomainError {
	return newError(KindDataCorruption, CodeDataCorruption, message, cause, context)
}

// NewLLMError builds an LLM_PROVIDER error with typed provider fields.
func NewLLMError(code, message string, cause error, provider, model string, context map[string]any) *DomainError {
	e := newError(KindLLMProvider, code, message, cause, context)
	e.Provider = provider
	e.Model = model
	e.Context["provider"] = provider
	e.Context["model"] = model
	return e
}

// NewCacheError builds a CACHE_OPERATION error. The cache key is
// truncated to 8 characters before it reaches logs or context.
func NewCacheError(code, message string, cause error, cacheKey, operation string) *DomainError {
	e := newError(KindCacheOperation, code, message, cause, nil)
	e.CacheKey = truncateKey(cacheKey)
	e.Operation = operation
	e.Context["cache_key"] = e.CacheKey
	e.Context["operation"] = operation
	return e
}

// NewDatabaseError builds a DATABASE error with persistence fields.
func NewDatabaseError(code, message string, cause error, entityType, operation string, context map[string]any) *DomainError {
	e := newError(KindDatabase, code, message, cause, context)
	e.EntityType = entityType
	e.Operation = operation
	e.Context["entity_type"] = entityType
	e.Context["operation"] = operation
	return e
}

func truncateKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

// AsDomainError unwraps err to a *DomainError when possible.
func AsDomainError(err error) (*DomainError, bool) {
	for err != nil {
		if de, ok := err.(*DomainError); ok {
			return de, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// Summary renders the context map as "k=v" pairs for log messages.
func (e *DomainError) Summary() string {
	parts := make([]string, 0, len(e.Context))
	for k, v := range e.Context {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}
