// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package server exposes the prompt improvement pipeline over HTTP:
// the improve endpoint, a health probe and the metrics analytics
// routes. Domain error kinds map onto fixed status codes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/internal/log"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/ifeval"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/llm"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/metrics"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/result"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/storage"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/strategy"
	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// Config wires the server's collaborators. Store and LLM are optional;
// their absence degrades the affected routes instead of failing
// construction.
type Config struct {
	Addr      string
	Selector  *strategy.Selector
	Validator *ifeval.Validator
	Evaluator *metrics.Evaluator
	Store     *storage.MetricsStore
	LLM       llm.Client
	Logger    *zap.Logger
}

// Server is the HTTP surface of the improvement pipeline.
type Server struct {
	cfg      Config
	validate *validator.Validate
	logger   *zap.Logger
	httpSrv  *http.Server
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Logger()
	}
	s := &Server{
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/improve-prompt", s.handleImprove)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/metrics/summary", s.handleMetricsSummary)
	mux.HandleFunc("/api/v1/metrics/trends", s.handleMetricsTrends)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           withRequestID(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, request-id middleware included.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// Start serves until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpSrv.Addr))
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// improveResponse is the 200 payload of the improve route.
type improveResponse struct {
	ImprovedPrompt   string   `json:"improved_prompt"`
	Role             string   `json:"role"`
	Directive        string   `json:"directive"`
	Framework        string   `json:"framework"`
	Guardrails       []string `json:"guardrails"`
	Reasoning        string   `json:"reasoning,omitempty"`
	Confidence       float64  `json:"confidence"`
	QualityGate      bool     `json:"quality_gate"`
	DegradationFlags []string `json:"degradation_flags"`
	Backend          string   `json:"backend"`
}

func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"error": "method_not_allowed"})
		return
	}

	var req types.ImproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Invalid input",
			"detail": "request body is not valid JSON"})
		return
	}
	if req.Idea == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Invalid input",
			"detail": "idea must be a non-empty string"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Invalid input",
			"detail": "mode must be one of legacy, nlac"})
		return
	}

	if s.cfg.LLM == nil {
		s.writeProviderUnavailable(w)
		return
	}

	start := time.Now()
	res, info, err := s.cfg.Selector.ImproveWithMode(r.Context(), req.Mode, strategy.Request{
		Idea:       req.Idea,
		Context:    req.Context,
		Guardrails: req.Guardrails,
	})
	if err != nil {
		s.writeImproveError(w, r, err)
		return
	}
	if res.IsFailure() {
		s.writeImproveError(w, r, res.Error())
		return
	}
	pred := res.Value()
	latency := time.Since(start)

	flags := flagNames(res.DegradationFlags())

	qualityGate := true
	if s.cfg.Validator != nil {
		qualityGate = s.cfg.Validator.Validate(pred.ImprovedPrompt).Passed
	}

	s.recordMetrics(r.Context(), req, pred, info, latency, &flags)

	writeJSON(w, http.StatusOK, improveResponse{
		ImprovedPrompt:   pred.ImprovedPrompt,
		Role:             pred.Role,
		Directive:        pred.Directive,
		Framework:        pred.Framework,
		Guardrails:       pred.Guardrails,
		Reasoning:        pred.Reasoning,
		Confidence:       pred.Confidence,
		QualityGate:      qualityGate,
		DegradationFlags: flags,
		Backend:          s.cfg.LLM.Provider(),
	})
}

// recordMetrics persists run metrics best-effort: storage failures
// degrade the response, never fail it.
func (s *Server) recordMetrics(ctx context.Context, req types.ImproveRequest, pred types.Prediction, info strategy.RouteInfo, latency time.Duration, flags *[]string) {
	if s.cfg.Evaluator == nil || s.cfg.Store == nil {
		return
	}

	m := s.cfg.Evaluator.Calculate(metrics.EvaluationInput{
		PromptID:     RequestIDFrom(ctx),
		OriginalIdea: req.Idea,
		Prediction:   pred,
		LatencyMS:    int(latency.Milliseconds()),
		Provider:     s.cfg.LLM.Provider(),
		Model:        s.cfg.LLM.Model(),
		Backend:      s.cfg.LLM.Provider(),
	}, nil)

	if derr := s.cfg.Store.Save(ctx, m); derr != nil {
		s.logger.Error("metrics persistence degraded",
			zap.String("error_id", derr.ErrorID),
			zap.String("strategy", info.Strategy))
		*flags = append(*flags, "metrics_unavailable")
	}
}

func (s *Server) writeProviderUnavailable(w http.ResponseWriter) {
	flags := append(s.cfg.Selector.DegradationFlags(), "provider_unavailable")
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{
		"error":             "service_unavailable",
		"message":           "LLM provider not configured or circuit breaker open",
		"degradation_flags": flags,
	})
}

// writeImproveError maps domain error kinds to the fixed status table.
func (s *Server) writeImproveError(w http.ResponseWriter, r *http.Request, err error) {
	if result.IsCancellation(err) {
		// The client is gone; nothing useful can be written.
		return
	}
	if llm.IsBreakerOpen(err) {
		s.writeProviderUnavailable(w)
		return
	}

	de, ok := result.AsDomainError(err)
	if !ok {
		s.logger.Error("unmapped improve failure",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "internal_error"})
		return
	}

	s.logger.Error("improve request failed",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("error_id", de.ErrorID),
		zap.String("kind", string(de.Kind)))

	switch de.Kind {
	case result.KindValidation:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Invalid input", "detail": de.Message})
	case result.KindLLMProvider:
		if de.Code == result.CodeLLMTimeout {
			writeJSON(w, http.StatusGatewayTimeout, map[string]any{
				"error": "provider_timeout", "message": de.Message})
			return
		}
		s.writeProviderUnavailable(w)
	case result.KindDatabase:
		if de.Code == result.CodeDBCorruption {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": "internal_error", "message": de.Message})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "service_unavailable", "message": de.Message})
	case result.KindDataCorruption:
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "internal_error", "message": de.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "internal_error", "message": de.Message})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	provider, model := "", ""
	configured := s.cfg.LLM != nil
	if configured {
		provider = s.cfg.LLM.Provider()
		model = s.cfg.LLM.Model()
	}
	if !configured || len(s.cfg.Selector.DegradationFlags()) > 0 {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          status,
		"provider":        provider,
		"model":           model,
		"dspy_configured": configured,
	})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "service_unavailable", "message": "metrics store not configured"})
		return
	}

	batch, derr := s.cfg.Store.GetAll(r.Context(), 1000, 0)
	if derr != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "service_unavailable", "message": derr.Message})
		return
	}

	summary := metrics.Summarize(batch)
	writeJSON(w, http.StatusOK, map[string]any{
		"total_prompts":       summary.Count,
		"average_quality":     summary.Quality.Mean,
		"average_performance": summary.Performance.Mean,
		"average_impact":      summary.Impact.Mean,
		"grade_distribution":  summary.GradeDistribution,
	})
}

func (s *Server) handleMetricsTrends(w http.ResponseWriter, r *http.Request) {
	days, err := parsePositiveInt(r.URL.Query().Get("days"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid_parameter",
			"detail": "days must be a positive integer"})
		return
	}

	if s.cfg.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "service_unavailable", "message": "metrics store not configured"})
		return
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	batch, derr := s.cfg.Store.GetByDateRange(r.Context(), start, end, 10000)
	if derr != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "service_unavailable", "message": derr.Message})
		return
	}

	report := metrics.AnalyzeTrends(batch)
	writeJSON(w, http.StatusOK, map[string]any{
		"periods": []string{
			start.Format(time.RFC3339),
			end.Format(time.RFC3339),
		},
		"trends": map[string]string{
			"quality":     report.Quality,
			"performance": report.Performance,
			"impact":      report.Impact,
		},
		"recommendations": report.Recommendations,
	})
}

// flagNames flattens a degradation flag set into the sorted list the
// response payload carries. Never nil, so the JSON field stays [].
func flagNames(flags map[string]bool) []string {
	out := make([]string, 0, len(flags))
	for name, set := range flags {
		if set {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func parsePositiveInt(raw string) (int, error) {
	if raw == "" {
		return 0, errors.New("missing")
	}
	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, errors.New("not a positive integer")
		}
		n = n*10 + int(r-'0')
		if n > 100000 {
			return 0, errors.New("out of range")
		}
	}
	if n <= 0 {
		return 0, errors.New("not positive")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
