// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package catalog

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
)

// isYAMLPath reports whether the catalog file should be decoded as
// YAML based on its extension.
func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// wrappedYAMLCatalog is the `examples:` artifact shape.
type wrappedYAMLCatalog struct {
	Examples []any `yaml:"examples"`
}

// decodeYAMLCatalog converts a YAML catalog into the same raw JSON
// documents the JSON path produces, so schema validation and exemplar
// parsing stay uniform.
func decodeYAMLCatalog(data []byte, source string) ([]Document, *result.DomainError) {
	var wrapped wrappedYAMLCatalog
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, yamlCorruptionError(err, source)
	}

	items := wrapped.Examples
	if items == nil {
		var bare []any
		if err := yaml.Unmarshal(data, &bare); err != nil {
			return nil, yamlCorruptionError(err, source)
		}
		items = bare
	}

	docs := make([]Document, 0, len(items))
	for i, item := range items {
		encoded, err := json.Marshal(item)
		if err != nil {
			return nil, result.NewDataCorruptionError(
				fmt.Sprintf("catalog entry %d is not JSON-representable: %v", i, err), err,
				map[string]any{"path": source, "index": i})
		}
		docs = append(docs, Document(encoded))
	}
	return docs, nil
}

func yamlCorruptionError(err error, source string) *result.DomainError {
	return result.NewDataCorruptionError(
		fmt.Sprintf("catalog is not valid YAML: %v", err), err,
		map[string]any{"path": source})
}
