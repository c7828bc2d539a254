// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package storage persists prompt metrics in sqlite, one row per
// prompt id with the composite scores stored verbatim alongside the
// raw inputs.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mutecomm/go-sqlcipher/v4"
	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/metrics"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
)

// MetricsStore manages persistent storage of prompt metrics.
// It owns a single connection; operations are serialized with a mutex
// so concurrent saves and reads stay atomic.
type MetricsStore struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	mapper *result.Mapper
	logger *zap.Logger
}

// NewMetricsStore opens (or creates) the database at dbPath.
// Use ":memory:" for an in-memory database in tests.
func NewMetricsStore(dbPath string, logger *zap.Logger) (*MetricsStore, *result.DomainError) {
	if logger == nil {
		logger = log.Logger()
	}
	mapper := result.NewMapper(logger)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, mapper.MapDatabaseError(err, "prompt_metrics", "open", dbPath, "")
	}

	store := &MetricsStore{
		db:     db,
		path:   dbPath,
		mapper: mapper,
		logger: logger,
	}
	if derr := store.Initialize(context.Background()); derr != nil {
		_ = db.Close()
		return nil, derr
	}
	return store, nil
}

// Initialize creates the schema if it does not exist.
func (s *MetricsStore) Initialize(ctx context.Context) *result.DomainError {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema := `
	CREATE TABLE IF NOT EXISTS prompt_metrics (
		prompt_id TEXT PRIMARY KEY,
		original_idea TEXT NOT NULL,
		improved_prompt TEXT NOT NULL,
		measured_at TIMESTAMP NOT NULL,
		framework TEXT NOT NULL,
		provider TEXT,
		model TEXT,
		backend TEXT,

		-- Quality inputs
		coherence_score REAL NOT NULL,
		relevance_score REAL NOT NULL,
		completeness_score REAL NOT NULL,
		clarity_score REAL NOT NULL,
		guardrails_count INTEGER NOT NULL,
		has_required_structure BOOLEAN NOT NULL,

		-- Performance inputs
		latency_ms INTEGER NOT NULL,
		total_tokens INTEGER NOT NULL,
		cost_usd REAL NOT NULL,

		-- Impact inputs
		copy_count INTEGER NOT NULL,
		regeneration_count INTEGER NOT NULL,
		feedback_score REAL,
		reuse_count INTEGER NOT NULL,

		-- Composites stored verbatim
		quality_composite REAL NOT NULL,
		performance_score REAL NOT NULL,
		impact_score REAL NOT NULL,
		overall_score REAL NOT NULL,
		grade TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_prompt_metrics_measured_at ON prompt_metrics(measured_at);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return s.mapper.MapDatabaseError(err, "prompt_metrics", "initialize", s.path, "")
	}
	return nil
}

// Close closes the database connection.
func (s *MetricsStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Save upserts the metrics row for its prompt id.
func (s *MetricsStore) Save(ctx context.Context, m metrics.PromptMetrics) *result.DomainError {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO prompt_metrics (
		prompt_id, original_idea, improved_prompt, measured_at,
		framework, provider, model, backend,
		coherence_score, relevance_score, completeness_score, clarity_score,
		guardrails_count, has_required_structure,
		latency_ms, total_tokens, cost_usd,
		copy_count, regeneration_count, feedback_score, reuse_count,
		quality_composite, performance_score, impact_score, overall_score, grade
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(prompt_id) DO UPDATE SET
		original_idea = excluded.original_idea,
		improved_prompt = excluded.improved_prompt,
		measured_at = excluded.measured_at,
		framework = excluded.framework,
		provider = excluded.provider,
		model = excluded.model,
		backend = excluded.backend,
		coherence_score = excluded.coherence_score,
		relevance_score = excluded.relevance_score,
		completeness_score = excluded.completeness_score,
		clarity_score = excluded.clarity_score,
		guardrails_count = excluded.guardrails_count,
		has_required_structure = excluded.has_required_structure,
		latency_ms = excluded.latency_ms,
		total_tokens = excluded.total_tokens,
		cost_usd = excluded.cost_usd,
		copy_count = excluded.copy_count,
		regeneration_count = excluded.regeneration_count,
		feedback_score = excluded.feedback_score,
		reuse_count = excluded.reuse_count,
		quality_composite = excluded.quality_composite,
		performance_score = excluded.performance_score,
		impact_score = excluded.impact_score,
		overall_score = excluded.overall_score,
		grade = excluded.grade
	`

	var feedback sql.NullFloat64
	if m.Impact.FeedbackScore != nil {
		feedback = sql.NullFloat64{Float64: *m.Impact.FeedbackScore, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		m.PromptID, m.OriginalIdea, m.ImprovedPrompt, m.MeasuredAt,
		string(m.Framework), m.Provider, m.Model, m.Backend,
		m.Quality.CoherenceScore, m.Quality.RelevanceScore,
		m.Quality.CompletenessScore, m.Quality.ClarityScore,
		m.Quality.GuardrailsCount, m.Quality.HasRequiredStructure,
		m.Performance.LatencyMS, m.Performance.TotalTokens, m.Performance.CostUSD,
		m.Impact.CopyCount, m.Impact.RegenerationCount, feedback, m.Impact.ReuseCount,
		m.Quality.CompositeScore(), m.Performance.PerformanceScore(),
		m.Impact.ImpactScore(), m.OverallScore(), m.Grade(),
	)
	if err != nil {
		return s.mapper.MapDatabaseError(err, "prompt_metrics", "save", s.path,
			fmt.Sprintf("prompt_id=%s", m.PromptID))
	}

	s.logger.Debug("prompt metrics saved",
		zap.String("prompt_id", m.PromptID))
	return nil
}

// GetByID returns the metrics for a prompt id, or nil when absent.
func (s *MetricsStore) GetByID(ctx context.Context, promptID string) (*metrics.PromptMetrics, *result.DomainError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		selectColumns+" FROM prompt_metrics WHERE prompt_id = ?", promptID)
	m, err := scanMetrics(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, s.mapper.MapDatabaseError(err, "prompt_metrics", "get_by_id", s.path,
			fmt.Sprintf("prompt_id=%s", promptID))
	}
	return m, nil
}

// GetAll returns metrics ordered newest first, paginated.
func (s *MetricsStore) GetAll(ctx context.Context, limit, offset int) ([]metrics.PromptMetrics, *result.DomainError) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM prompt_metrics ORDER BY measured_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, s.mapper.MapDatabaseError(err, "prompt_metrics", "get_all", s.path, "")
	}
	defer rows.Close()

	return s.collect(rows, "get_all")
}

// GetByDateRange returns metrics measured within [start, end], oldest
// first, capped at limit.
func (s *MetricsStore) GetByDateRange(ctx context.Context, start, end time.Time, limit int) ([]metrics.PromptMetrics, *result.DomainError) {
	if limit <= 0 {
		limit = 1000
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		selectColumns+` FROM prompt_metrics
		 WHERE measured_at >= ? AND measured_at <= ?
		 ORDER BY measured_at ASC LIMIT ?`,
		start, end, limit)
	if err != nil {
		return nil, s.mapper.MapDatabaseError(err, "prompt_metrics", "get_by_date_range", s.path, "")
	}
	defer rows.Close()

	return s.collect(rows, "get_by_date_range")
}

func (s *MetricsStore) collect(rows *sql.Rows, operation string) ([]metrics.PromptMetrics, *result.DomainError) {
	var out []metrics.PromptMetrics
	for rows.Next() {
		m, err := scanMetrics(rows)
		if err != nil {
			return nil, s.mapper.MapDatabaseError(err, "prompt_metrics", operation, s.path, "")
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapDatabaseError(err, "prompt_metrics", operation, s.path, "")
	}
	return out, nil
}

const selectColumns = `SELECT
	prompt_id, original_idea, improved_prompt, measured_at,
	framework, provider, model, backend,
	coherence_score, relevance_score, completeness_score, clarity_score,
	guardrails_count, has_required_structure,
	latency_ms, total_tokens, cost_usd,
	copy_count, regeneration_count, feedback_score, reuse_count`

type scannable interface {
	Scan(dest ...any) error
}

func scanMetrics(row scannable) (*metrics.PromptMetrics, error) {
	var m metrics.PromptMetrics
	var framework string
	var feedback sql.NullFloat64

	err := row.Scan(
		&m.PromptID, &m.OriginalIdea, &m.ImprovedPrompt, &m.MeasuredAt,
		&framework, &m.Provider, &m.Model, &m.Backend,
		&m.Quality.CoherenceScore, &m.Quality.RelevanceScore,
		&m.Quality.CompletenessScore, &m.Quality.ClarityScore,
		&m.Quality.GuardrailsCount, &m.Quality.HasRequiredStructure,
		&m.Performance.LatencyMS, &m.Performance.TotalTokens, &m.Performance.CostUSD,
		&m.Impact.CopyCount, &m.Impact.RegenerationCount, &feedback, &m.Impact.ReuseCount,
	)
	if err != nil {
		return nil, err
	}

	m.Framework = metrics.FrameworkType(framework)
	if feedback.Valid {
		m.Impact.FeedbackScore = &feedback.Float64
	}
	m.Performance.Provider = m.Provider
	m.Performance.Model = m.Model
	m.Performance.Backend = m.Backend
	m.MeasuredAt = m.MeasuredAt.UTC()
	return &m, nil
}
