// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package knn retrieves few-shot exemplars by cosine similarity over
// vectorized catalog entries. The provider is built once at startup;
// its vectorizer and catalog matrix are read-only afterwards and safe
// to share across concurrent requests without locking.
package knn

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/catalog"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/vectorizer"
)

const (
	// DefaultK is the number of exemplars returned when unspecified.
	DefaultK = 3
	// DefaultMinSimilarity filters out barely-related exemplars.
	DefaultMinSimilarity = 0.1

	// Skip-rate ladder for catalog loading.
	skipRateWarn = 0.05
	skipRateFail = 0.20
)

// Config configures a Provider. Exactly one of CatalogPath,
// CatalogData or Repository must be set.
type Config struct {
	CatalogPath string
	CatalogData []byte
	Repository  catalog.Repository

	// Vectorizer defaults to a fresh bigram vectorizer.
	Vectorizer vectorizer.Vectorizer
	Logger     *zap.Logger
}

// Provider answers few-shot retrieval queries against a loaded catalog.
type Provider struct {
	exemplars  []catalog.Exemplar
	vec        vectorizer.Vectorizer
	catVectors [][]float64
	logger     *zap.Logger
}

// Query describes one retrieval request.
type Query struct {
	Intent            types.IntentType
	Complexity        types.ComplexityLevel
	K                 int
	HasExpectedOutput bool
	UserInput         string
	MinSimilarity     float64
}

// Metadata summarizes what a retrieval run saw, for diagnostics.
type Metadata struct {
	HighestSimilarity float64 `json:"highest_similarity"`
	TotalCandidates   int     `json:"total_candidates"`
	MetThreshold      int     `json:"met_threshold"`
	Empty             bool    `json:"empty"`
}

// NewProvider loads the catalog, validates entries under the skip-rate
// policy, fits the vectorizer and precomputes catalog vectors.
func NewProvider(ctx context.Context, cfg Config) (*Provider, *result.DomainError) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Logger()
	}

	repo, derr := resolveRepository(cfg, logger)
	if derr != nil {
		return nil, derr
	}

	docs, derr := repo.LoadCatalog(ctx)
	if derr != nil {
		return nil, derr
	}

	exemplars, derr := validateDocuments(docs, logger)
	if derr != nil {
		return nil, derr
	}

	vec := cfg.Vectorizer
	if vec == nil {
		vec = vectorizer.NewBigram()
	}

	texts := make([]string, len(exemplars))
	for i, ex := range exemplars {
		texts[i] = ex.SearchText()
	}
	vec.Fit(texts)

	// Catalog vectors are computed exactly once and shared read-only.
	catVectors, err := vec.Transform(texts)
	if err != nil {
		return nil, result.NewValidationError(
			fmt.Sprintf("failed to vectorize catalog: %v", err),
			map[string]any{"catalog_size": len(exemplars)})
	}

	logger.Info("knn provider ready",
		zap.Int("exemplars", len(exemplars)),
		zap.String("vectorizer_mode", vec.Mode()))

	return &Provider{
		exemplars:  exemplars,
		vec:        vec,
		catVectors: catVectors,
		logger:     logger,
	}, nil
}

func resolveRepository(cfg Config, logger *zap.Logger) (catalog.Repository, *result.DomainError) {
	sources := 0
	if cfg.CatalogPath != "" {
		sources++
	}
	if cfg.CatalogData != nil {
		sources++
	}
	if cfg.Repository != nil {
		sources++
	}
	if sources != 1 {
		return nil, result.NewValidationError(
			fmt.Sprintf("exactly one catalog source required, got %d", sources), nil)
	}

	switch {
	case cfg.Repository != nil:
		return cfg.Repository, nil
	case cfg.CatalogPath != "":
		return catalog.NewFileRepository(cfg.CatalogPath, logger), nil
	default:
		return catalog.NewDataRepository(cfg.CatalogData), nil
	}
}

// validateDocuments applies the skip-rate policy:
//   - below 5% invalid: warn
//   - 5% to below 20%: ERROR labeled quality degradation
//   - 20% and above, or zero valid entries: DATA_CORRUPTION failure
func validateDocuments(docs []catalog.Document, logger *zap.Logger) ([]catalog.Exemplar, *result.DomainError) {
	total := len(docs)
	exemplars := make([]catalog.Exemplar, 0, total)
	skipped := 0

	for i, doc := range docs {
		if err := catalog.ValidateDocument(doc); err != nil {
			skipped++
			logger.Warn("skipping invalid catalog entry",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		ex, err := catalog.ParseExemplar(doc)
		if err != nil {
			skipped++
			logger.Warn("skipping undecodable catalog entry",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		exemplars = append(exemplars, ex)
	}

	if len(exemplars) == 0 {
		return nil, result.NewDataCorruptionError(
			"catalog contains no valid exemplars", nil,
			map[string]any{"total": total, "skipped": skipped})
	}

	rate := float64(skipped) / float64(total)
	switch {
	case rate >= skipRateFail:
		return nil, result.NewDataCorruptionError(
			fmt.Sprintf("catalog skip rate %.1f%% exceeds limit", rate*100), nil,
			map[string]any{"skip_rate": rate, "total": total, "skipped": skipped})
	case rate >= skipRateWarn:
		logger.Error("catalog quality degradation",
			zap.Float64("skip_rate", rate),
			zap.Int("skipped", skipped),
			zap.Int("total", total))
	case skipped > 0:
		logger.Warn("catalog entries skipped",
			zap.Float64("skip_rate", rate),
			zap.Int("skipped", skipped))
	}

	return exemplars, nil
}

// Size returns the number of usable exemplars.
func (p *Provider) Size() int {
	return len(p.exemplars)
}

// FindExamples returns the top-k exemplars most similar to the query.
// An empty result is not an error: it means nothing cleared the
// similarity threshold.
func (p *Provider) FindExamples(ctx context.Context, q Query) ([]types.FewShotExample, *result.DomainError) {
	examples, _, derr := p.findWithMetadata(ctx, q)
	return examples, derr
}

// FindExamplesWithMetadata is FindExamples plus retrieval diagnostics.
func (p *Provider) FindExamplesWithMetadata(ctx context.Context, q Query) ([]types.FewShotExample, Metadata, *result.DomainError) {
	return p.findWithMetadata(ctx, q)
}

func (p *Provider) findWithMetadata(ctx context.Context, q Query) ([]types.FewShotExample, Metadata, *result.DomainError) {
	meta := Metadata{Empty: true}

	if !q.Intent.Valid() {
		return nil, meta, result.NewValidationError(
			fmt.Sprintf("unrecognized intent %q", q.Intent),
			map[string]any{"intent": string(q.Intent)})
	}
	if !q.Complexity.Valid() {
		return nil, meta, result.NewValidationError(
			fmt.Sprintf("unrecognized complexity %q", q.Complexity),
			map[string]any{"complexity": string(q.Complexity)})
	}

	k := q.K
	if k <= 0 {
		k = DefaultK
	}
	minSim := q.MinSimilarity
	if minSim == 0 {
		minSim = DefaultMinSimilarity
	}

	// Candidate pool, optionally narrowed to exemplars that carry an
	// expected output.
	indices := make([]int, 0, len(p.exemplars))
	for i, ex := range p.exemplars {
		if q.HasExpectedOutput && !ex.HasExpectedOutput() {
			continue
		}
		indices = append(indices, i)
	}
	meta.TotalCandidates = len(indices)
	if len(indices) == 0 {
		return []types.FewShotExample{}, meta, nil
	}

	queryText := buildQueryText(q)
	queryRows, err := p.vec.Transform([]string{queryText})
	if err != nil {
		return nil, meta, result.NewValidationError(
			fmt.Sprintf("failed to vectorize query: %v", err),
			map[string]any{"query": queryText})
	}
	queryVec := queryRows[0]

	// The precomputed matrix serves unfiltered queries; a filtered
	// pool is vectorized on the fly.
	var candidates [][]float64
	if len(indices) == len(p.exemplars) {
		candidates = p.catVectors
	} else {
		texts := make([]string, len(indices))
		for i, idx := range indices {
			texts[i] = p.exemplars[idx].SearchText()
		}
		candidates, err = p.vec.Transform(texts)
		if err != nil {
			return nil, meta, result.NewValidationError(
				fmt.Sprintf("failed to vectorize filtered catalog: %v", err), nil)
		}
	}

	sims, derr := cosineSimilarities(candidates, queryVec)
	if derr != nil {
		return nil, meta, derr
	}

	type scored struct {
		catalogIdx int
		sim        float64
	}
	qualifying := make([]scored, 0, len(indices))
	highest := 0.0
	for i, sim := range sims {
		if sim > highest {
			highest = sim
		}
		if sim >= minSim {
			qualifying = append(qualifying, scored{catalogIdx: indices[i], sim: sim})
		}
	}
	meta.HighestSimilarity = highest
	meta.MetThreshold = len(qualifying)

	if len(qualifying) == 0 {
		p.logger.Info("no exemplars met similarity threshold",
			zap.Float64("highest_similarity", highest),
			zap.Float64("min_similarity", minSim),
			zap.String("intent", string(q.Intent)))
		return []types.FewShotExample{}, meta, nil
	}

	sort.SliceStable(qualifying, func(a, b int) bool {
		return qualifying[a].sim > qualifying[b].sim
	})
	if len(qualifying) > k {
		qualifying = qualifying[:k]
	}

	out := make([]types.FewShotExample, len(qualifying))
	for i, s := range qualifying {
		ex := p.exemplars[s.catalogIdx]
		expected := ""
		if ex.ExpectedOutput != nil {
			expected = *ex.ExpectedOutput
		}
		out[i] = types.FewShotExample{
			InputIdea:      ex.InputIdea,
			InputContext:   ex.InputContext,
			ImprovedPrompt: ex.ImprovedPrompt,
			Role:           ex.Role,
			Directive:      ex.Directive,
			Framework:      ex.Framework,
			Guardrails:     ex.Guardrails,
			ExpectedOutput: expected,
			Similarity:     s.sim,
		}
	}
	meta.Empty = false
	return out, meta, nil
}

// buildQueryText concatenates intent, complexity and the trimmed user
// input. Whitespace-only user input is ignored.
func buildQueryText(q Query) string {
	parts := []string{string(q.Intent), string(q.Complexity)}
	if trimmed := strings.TrimSpace(q.UserInput); trimmed != "" {
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, " ")
}

// cosineSimilarities computes (A . q) / (|A| * |q|) per row, mapping
// zero-norm rows to 0. Non-finite vector values are a VALIDATION
// failure: they indicate a corrupted vector space.
func cosineSimilarities(rows [][]float64, query []float64) ([]float64, *result.DomainError) {
	qNorm := 0.0
	for _, v := range query {
		if !isFinite(v) {
			return nil, result.NewValidationError("query vector contains non-finite values", nil)
		}
		qNorm += v * v
	}
	qNorm = math.Sqrt(qNorm)

	sims := make([]float64, len(rows))
	for i, row := range rows {
		dot, rNorm := 0.0, 0.0
		for j, v := range row {
			if !isFinite(v) {
				return nil, result.NewValidationError(
					fmt.Sprintf("catalog vector %d contains non-finite values", i), nil)
			}
			dot += v * query[j]
			rNorm += v * v
		}
		rNorm = math.Sqrt(rNorm)
		if rNorm == 0 || qNorm == 0 {
			sims[i] = 0
			continue
		}
		sims[i] = dot / (rNorm * qNorm)
	}
	return sims, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
