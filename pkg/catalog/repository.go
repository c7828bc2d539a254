// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
)

// Repository loads raw catalog documents from some backing source.
type Repository interface {
	// LoadCatalog returns the raw exemplar documents. Fails with a
	// FILE_IO error when the artifact is missing and DATA_CORRUPTION
	// when it cannot be decoded.
	LoadCatalog(ctx context.Context) ([]Document, *result.DomainError)
}

// wrappedCatalog is the `{"examples": [...]}` artifact shape.
type wrappedCatalog struct {
	Examples []Document `json:"examples"`
}

// FileRepository reads the catalog from a JSON file on disk.
type FileRepository struct {
	path   string
	mapper *result.Mapper
	logger *zap.Logger
}

// NewFileRepository creates a repository over a catalog file path.
func NewFileRepository(path string, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = log.Logger()
	}
	return &FileRepository{
		path:   path,
		mapper: result.NewMapper(logger),
		logger: logger,
	}
}

// LoadCatalog implements Repository.
func (r *FileRepository) LoadCatalog(ctx context.Context) ([]Document, *result.DomainError) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, r.mapper.MapFileError(err, r.path)
	}

	if !utf8.Valid(data) {
		pos := firstInvalidByte(data)
		return nil, result.NewDataCorruptionError(
			fmt.Sprintf("catalog is not valid UTF-8 (byte %d)", pos), nil,
			map[string]any{"path": r.path, "position": pos})
	}

	var docs []Document
	var derr *result.DomainError
	if isYAMLPath(r.path) {
		docs, derr = decodeYAMLCatalog(data, r.path)
	} else {
		docs, derr = decodeCatalog(data, r.path)
	}
	if derr != nil {
		return nil, derr
	}

	r.logger.Info("catalog loaded",
		zap.String("path", r.path),
		zap.Int("documents", len(docs)))
	return docs, nil
}

// DataRepository serves an in-memory catalog, used by tests and by
// callers that already hold the decoded artifact.
type DataRepository struct {
	data []byte
}

// NewDataRepository creates a repository over raw catalog JSON.
func NewDataRepository(data []byte) *DataRepository {
	return &DataRepository{data: data}
}

// NewDataRepositoryFromExemplars creates a repository over decoded
// exemplars.
func NewDataRepositoryFromExemplars(exemplars []Exemplar) (*DataRepository, error) {
	data, err := json.Marshal(wrappedExemplars{Examples: exemplars})
	if err != nil {
		return nil, fmt.Errorf("failed to encode exemplars: %w", err)
	}
	return &DataRepository{data: data}, nil
}

type wrappedExemplars struct {
	Examples []Exemplar `json:"examples"`
}

// LoadCatalog implements Repository.
func (r *DataRepository) LoadCatalog(ctx context.Context) ([]Document, *result.DomainError) {
	return decodeCatalog(r.data, "<memory>")
}

// decodeCatalog accepts both the wrapped `{"examples": [...]}` shape
// and a bare list.
func decodeCatalog(data []byte, source string) ([]Document, *result.DomainError) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []Document
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, corruptionError(err, data, source)
		}
		return docs, nil
	}

	var wrapped wrappedCatalog
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, corruptionError(err, data, source)
	}
	return wrapped.Examples, nil
}

// corruptionError builds a DATA_CORRUPTION error carrying line/column
// position when the decoder reports an offset.
func corruptionError(err error, data []byte, source string) *result.DomainError {
	ctxMap := map[string]any{"path": source}
	var offset int64 = -1
	if syn, ok := err.(*json.SyntaxError); ok {
		offset = syn.Offset
	} else if ute, ok := err.(*json.UnmarshalTypeError); ok {
		offset = ute.Offset
	}
	if offset >= 0 {
		line, col := offsetToLineCol(data, offset)
		ctxMap["line"] = line
		ctxMap["column"] = col
	}
	return result.NewDataCorruptionError(
		fmt.Sprintf("catalog is not valid JSON: %v", err), err, ctxMap)
}

func offsetToLineCol(data []byte, offset int64) (int, int) {
	line, col := 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func firstInvalidByte(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
