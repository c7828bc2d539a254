// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package result

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
)

// Mapper translates low-level exceptions into domain errors at the
// infrastructure boundary. Domain components never inspect raw driver
// or transport errors themselves.
//
// The mapper is stateless and safe for concurrent use. Every mapping
// emits exactly one ERROR log whose message contains the error ID.
type Mapper struct {
	logger *zap.Logger
}

// NewMapper creates a mapper. A nil logger falls back to the global.
func NewMapper(logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = log.Logger()
	}
	return &Mapper{logger: logger}
}

// IsCancellation reports whether err stems from caller cancellation.
// Cancellation must propagate untouched; it is never mapped to a
// domain error.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// MapLLMError maps an LLM transport failure.
//
// Timeouts take precedence over generic connection failures and carry
// the historical "asyncio.TimeoutError" label so downstream consumers
// keep seeing the same error_type string. Consumers must not rely on
// the label beyond equality with that literal.
func (m *Mapper) MapLLMError(err error, provider, model string, promptLength int) *DomainError {
	ctxMap := map[string]any{
		"prompt_length":      promptLength,
		"original_exception": fmt.Sprintf("%T", err),
	}

	var de *DomainError
	switch {
	case isTimeout(err):
		ctxMap["error_type"] = "asyncio.TimeoutError"
		de = NewLLMError(CodeLLMTimeout,
			fmt.Sprintf("LLM call timed out: %v", err), err, provider, model, ctxMap)
	case isConnectionError(err):
		de = NewLLMError(CodeLLMConnectionFailed,
			fmt.Sprintf("LLM connection failed: %v", err), err, provider, model, ctxMap)
	default:
		de = NewLLMError(CodeLLMUnknownError,
			fmt.Sprintf("LLM call failed: %v", err), err, provider, model, ctxMap)
	}

	m.logMapped(de)
	return de
}

// MapDatabaseError maps a database/sql or driver failure.
func (m *Mapper) MapDatabaseError(err error, entityType, operation, dbPath, queryContext string) *DomainError {
	ctxMap := map[string]any{
		"db_path":       dbPath,
		"query_context": queryContext,
	}

	msg := strings.ToLower(err.Error())
	var de *DomainError
	switch {
	case strings.Contains(msg, "constraint"):
		de = NewDatabaseError(CodeCacheConstraintViolation,
			fmt.Sprintf("constraint violation: %v", err), err, entityType, operation, ctxMap)
		de.Kind = KindCacheOperation
	case strings.Contains(msg, "not a database") || strings.Contains(msg, "malformed"):
		de = NewDatabaseError(CodeDBCorruption,
			fmt.Sprintf("database file corrupted: %v", err), err, entityType, operation, ctxMap)
	case errors.Is(err, os.ErrPermission) || strings.Contains(msg, "permission denied") || strings.Contains(msg, "readonly database"):
		de = NewDatabaseError(CodeDBPermissionDenied,
			fmt.Sprintf("database permission denied: %v", err), err, entityType, operation, ctxMap)
	default:
		if isTimeout(err) {
			ctxMap["error_type"] = "asyncio.TimeoutError"
		}
		de = NewDatabaseError(CodeDBOperationalError,
			fmt.Sprintf("database operation failed: %v", err), err, entityType, operation, ctxMap)
	}

	m.logMapped(de)
	return de
}

// MapCacheError maps a cache subsystem failure. The cache key is
// truncated before it ever reaches logs.
func (m *Mapper) MapCacheError(err error, cacheKey, operation string) *DomainError {
	code := CodeCacheOperationFailed
	if strings.Contains(strings.ToLower(err.Error()), "constraint") {
		code = CodeCacheConstraintViolation
	}
	de := NewCacheError(code,
		fmt.Sprintf("cache %s failed: %v", operation, err), err, cacheKey, operation)
	m.logMapped(de)
	return de
}

// MapFileError maps a filesystem failure during artifact loading.
func (m *Mapper) MapFileError(err error, path string) *DomainError {
	var de *DomainError
	switch {
	case errors.Is(err, os.ErrNotExist):
		de = NewFileNotFoundError(path, err)
	case errors.Is(err, os.ErrPermission):
		de = newError(KindFileIO, CodeFilePermissionDenied,
			fmt.Sprintf("permission denied: %s", path), err,
			map[string]any{"path": path})
	default:
		de = newError(KindFileIO, CodeFileNotFound,
			fmt.Sprintf("file read failed: %s: %v", path, err), err,
			map[string]any{"path": path})
	}
	m.logMapped(de)
	return de
}

func (m *Mapper) logMapped(de *DomainError) {
	m.logger.Error(fmt.Sprintf("[%s] %s", de.ErrorID, de.Message),
		zap.String("error_id", de.ErrorID),
		zap.String("kind", string(de.Kind)),
		zap.String("code", de.Code),
		zap.Any("context", de.Context),
		zap.Int("stack_frames", len(de.Stack)),
	)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func isConnectionError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host")
}
