// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package vectorizer converts text into numeric vectors for similarity
// search. Two modes share one contract: the self-contained "bigram"
// vectorizer and the provider-backed "embedding" vectorizer.
package vectorizer

import (
	"fmt"
	"strings"
)

// Vectorizer converts batches of texts into row vectors of a fixed
// dimension. Implementations must be deterministic: identical inputs
// yield identical output.
type Vectorizer interface {
	// Mode identifies the vectorizer family ("bigram" or "embedding").
	Mode() string

	// Fit learns vocabulary from a corpus. Embedding mode is a no-op.
	Fit(texts []string) Vectorizer

	// Transform converts texts into a [len(texts) x Dim] matrix.
	Transform(texts []string) ([][]float64, error)

	// Vectorize is Transform, fitting first when needed.
	Vectorize(texts []string) ([][]float64, error)
}

// Bigram vectorizes text by counting character bigrams over a fixed
// vocabulary. The vocabulary is the union of bigrams over the fitted
// corpus in first-sight order; rows are L1-normalized to remove length
// bias. Once fit, the vocabulary never changes.
type Bigram struct {
	vocab []string
	index map[string]int
	fit   bool
}

// NewBigram creates an unfitted bigram vectorizer.
func NewBigram() *Bigram {
	return &Bigram{index: make(map[string]int)}
}

// Mode implements Vectorizer.
func (b *Bigram) Mode() string { return "bigram" }

// Fitted reports whether the vocabulary has been learned.
func (b *Bigram) Fitted() bool { return b.fit }

// VocabSize returns the vector dimension after fitting.
func (b *Bigram) VocabSize() int { return len(b.vocab) }

// Fit learns the bigram vocabulary in deterministic insertion order.
// A fitted vectorizer ignores further Fit calls: the vocabulary is
// frozen so catalog vectors stay comparable with query vectors.
func (b *Bigram) Fit(texts []string) Vectorizer {
	if b.fit {
		return b
	}
	for _, text := range texts {
		for _, bg := range bigrams(text) {
			if _, ok := b.index[bg]; !ok {
				b.index[bg] = len(b.vocab)
				b.vocab = append(b.vocab, bg)
			}
		}
	}
	b.fit = true
	return b
}

// Transform converts texts into L1-normalized bigram count rows.
// Fails when called before Fit.
func (b *Bigram) Transform(texts []string) ([][]float64, error) {
	if !b.fit {
		return nil, fmt.Errorf("bigram vectorizer used before fit")
	}

	rows := make([][]float64, len(texts))
	for i, text := range texts {
		row := make([]float64, len(b.vocab))
		total := 0.0
		for _, bg := range bigrams(text) {
			if j, ok := b.index[bg]; ok {
				row[j]++
				total++
			}
		}
		// Zero-sum rows stay zero rather than dividing by zero.
		if total > 0 {
			for j := range row {
				row[j] /= total
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// Vectorize fits on the input when the vocabulary is empty, then
// transforms.
func (b *Bigram) Vectorize(texts []string) ([][]float64, error) {
	if !b.fit {
		b.Fit(texts)
	}
	return b.Transform(texts)
}

// bigrams enumerates the character bigrams of the lowercased text.
func bigrams(text string) []string {
	runes := []rune(strings.ToLower(text))
	if len(runes) < 2 {
		return nil
	}
	out := make([]string, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		out = append(out, string(runes[i:i+2]))
	}
	return out
}

// Embedder produces dense vectors from an external embedding provider.
type Embedder interface {
	Embed(texts []string) ([][]float64, error)
}

// Embedding adapts an Embedder to the Vectorizer contract. It needs no
// fitting; the provider owns the vector space.
type Embedding struct {
	embedder Embedder
}

// NewEmbedding creates an embedding-backed vectorizer.
func NewEmbedding(embedder Embedder) *Embedding {
	return &Embedding{embedder: embedder}
}

// Mode implements Vectorizer.
func (e *Embedding) Mode() string { return "embedding" }

// Fit is a no-op for embedding mode.
func (e *Embedding) Fit(texts []string) Vectorizer { return e }

// Transform implements Vectorizer.
func (e *Embedding) Transform(texts []string) ([][]float64, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("embedding vectorizer has no provider")
	}
	return e.embedder.Embed(texts)
}

// Vectorize implements Vectorizer.
func (e *Embedding) Vectorize(texts []string) ([][]float64, error) {
	return e.Transform(texts)
}
