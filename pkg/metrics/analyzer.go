// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package metrics

import (
	"fmt"
	"sort"
)

// Trend labels for a dimension across time.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// trendDelta is the mean-score movement below which a dimension counts
// as stable.
const trendDelta = 0.05

// DimensionStats summarizes one score dimension over a batch.
type DimensionStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Summary aggregates a batch of metrics.
type Summary struct {
	Count             int            `json:"count"`
	Quality           DimensionStats `json:"quality"`
	Performance       DimensionStats `json:"performance"`
	Impact            DimensionStats `json:"impact"`
	GradeDistribution map[string]int `json:"grade_distribution"`
}

// TrendReport labels each dimension's movement between the older and
// newer half of a batch.
type TrendReport struct {
	Quality         string   `json:"quality"`
	Performance     string   `json:"performance"`
	Impact          string   `json:"impact"`
	Recommendations []string `json:"recommendations"`
}

// ComparisonReport is the outcome of an A/B comparison.
type ComparisonReport struct {
	Deltas          map[string]float64 `json:"deltas"`
	BaselineGrades  map[string]int     `json:"baseline_grades"`
	TreatmentGrades map[string]int     `json:"treatment_grades"`
	Winner          string             `json:"winner"`
	Explanation     string             `json:"explanation"`
}

// Summarize aggregates the batch. An empty batch yields a zero summary.
func Summarize(batch []PromptMetrics) Summary {
	s := Summary{
		Count:             len(batch),
		GradeDistribution: make(map[string]int),
	}
	if len(batch) == 0 {
		return s
	}

	s.Quality = statsOf(batch, func(m PromptMetrics) float64 { return m.Quality.CompositeScore() })
	s.Performance = statsOf(batch, func(m PromptMetrics) float64 { return m.Performance.PerformanceScore() })
	s.Impact = statsOf(batch, func(m PromptMetrics) float64 { return m.Impact.ImpactScore() })
	for _, m := range batch {
		s.GradeDistribution[m.Grade()]++
	}
	return s
}

func statsOf(batch []PromptMetrics, score func(PromptMetrics) float64) DimensionStats {
	stats := DimensionStats{Min: 1, Max: 0}
	sum := 0.0
	for _, m := range batch {
		v := score(m)
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = sum / float64(len(batch))
	return stats
}

// AnalyzeTrends splits the batch chronologically into halves and labels
// each dimension's movement. Batches smaller than two entries are
// reported stable across the board.
func AnalyzeTrends(batch []PromptMetrics) TrendReport {
	report := TrendReport{
		Quality:     TrendStable,
		Performance: TrendStable,
		Impact:      TrendStable,
	}
	if len(batch) < 2 {
		report.Recommendations = []string{"not enough data for trend analysis"}
		return report
	}

	ordered := append([]PromptMetrics(nil), batch...)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].MeasuredAt.Before(ordered[b].MeasuredAt)
	})
	older := ordered[:len(ordered)/2]
	newer := ordered[len(ordered)/2:]

	report.Quality = trendLabel(
		statsOf(older, func(m PromptMetrics) float64 { return m.Quality.CompositeScore() }).Mean,
		statsOf(newer, func(m PromptMetrics) float64 { return m.Quality.CompositeScore() }).Mean)
	report.Performance = trendLabel(
		statsOf(older, func(m PromptMetrics) float64 { return m.Performance.PerformanceScore() }).Mean,
		statsOf(newer, func(m PromptMetrics) float64 { return m.Performance.PerformanceScore() }).Mean)
	report.Impact = trendLabel(
		statsOf(older, func(m PromptMetrics) float64 { return m.Impact.ImpactScore() }).Mean,
		statsOf(newer, func(m PromptMetrics) float64 { return m.Impact.ImpactScore() }).Mean)

	report.Recommendations = recommendations(report)
	return report
}

func trendLabel(older, newer float64) string {
	switch {
	case newer-older > trendDelta:
		return TrendImproving
	case older-newer > trendDelta:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func recommendations(r TrendReport) []string {
	var out []string
	if r.Quality == TrendDeclining {
		out = append(out, "quality is declining: review recent strategy or catalog changes")
	}
	if r.Performance == TrendDeclining {
		out = append(out, "performance is declining: check provider latency and token budgets")
	}
	if r.Impact == TrendDeclining {
		out = append(out, "impact is declining: users regenerate more than they copy")
	}
	if len(out) == 0 {
		out = append(out, "no declining dimensions: keep the current configuration")
	}
	return out
}

// CompareVersions runs an A/B comparison between two batches.
func CompareVersions(baseline, treatment []PromptMetrics) ComparisonReport {
	base := Summarize(baseline)
	treat := Summarize(treatment)

	report := ComparisonReport{
		Deltas: map[string]float64{
			"quality":     treat.Quality.Mean - base.Quality.Mean,
			"performance": treat.Performance.Mean - base.Performance.Mean,
			"impact":      treat.Impact.Mean - base.Impact.Mean,
		},
		BaselineGrades:  base.GradeDistribution,
		TreatmentGrades: treat.GradeDistribution,
	}

	baseOverall := overallMean(baseline)
	treatOverall := overallMean(treatment)
	delta := treatOverall - baseOverall
	switch {
	case delta > 0.02:
		report.Winner = "treatment"
	case delta < -0.02:
		report.Winner = "baseline"
	default:
		report.Winner = "tie"
	}
	report.Explanation = fmt.Sprintf(
		"treatment overall %.3f vs baseline %.3f (delta %+.3f)",
		treatOverall, baseOverall, delta)
	return report
}

func overallMean(batch []PromptMetrics) float64 {
	if len(batch) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range batch {
		sum += m.OverallScore()
	}
	return sum / float64(len(batch))
}
