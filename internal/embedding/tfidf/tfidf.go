// Package tfidf is a lexical embedding backend: bag-of-words vectors weighted
// by smoothed inverse document frequency over a fitted corpus.
package tfidf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/nity4jain/skillbridge-mvp/internal/embedding"
)

const name = "tfidf"

var _ embedding.CorpusEmbedder = (*Vectorizer)(nil)

// Vectorizer is the unfitted backend. It cannot embed until fitted.
type Vectorizer struct{}

func New() *Vectorizer { return &Vectorizer{} }

func (*Vectorizer) Model() string { return name }

func (*Vectorizer) Embed(context.Context, string) (embedding.Vector, error) {
	return embedding.Vector{}, fmt.Errorf("%w: %s vectorizer is not fitted", embedding.ErrBackendUnavailable, name)
}

// Fit learns the vocabulary and idf weights of docs. A corpus without terms
// yields a zero-dimension model whose vectors are empty and score 0.
func (*Vectorizer) Fit(ctx context.Context, docs []string) (embedding.Embedder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range Tokenize(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	n := float64(len(docs))
	m := &Model{
		index: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	hash := sha256.New()
	for i, term := range terms {
		m.index[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
		hash.Write([]byte(term))
		hash.Write([]byte{0})
	}
	for _, doc := range docs {
		hash.Write([]byte(doc))
		hash.Write([]byte{0})
	}
	m.model = name + ":" + hex.EncodeToString(hash.Sum(nil))[:12]

	return m, nil
}

// Model embeds text in the space of a fitted corpus. Terms unknown to the
// corpus are ignored. It is immutable and safe for concurrent use.
type Model struct {
	model string
	index map[string]int
	idf   []float64
}

func (m *Model) Model() string { return m.model }

var _ embedding.Sized = (*Model)(nil)

// Dimensions is the vocabulary size.
func (m *Model) Dimensions() int { return len(m.idf) }

func (m *Model) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	if err := ctx.Err(); err != nil {
		return embedding.Vector{}, err
	}

	weights := make([]float64, len(m.idf))
	for _, term := range Tokenize(text) {
		if i, ok := m.index[term]; ok {
			weights[i]++
		}
	}

	var norm float64
	for i, tf := range weights {
		weights[i] = tf * m.idf[i]
		norm += weights[i] * weights[i]
	}
	norm = math.Sqrt(norm)

	values := make([]float32, len(weights))
	if norm > 0 {
		for i, w := range weights {
			values[i] = float32(w / norm)
		}
	}

	return embedding.Vector{Values: values, Model: m.model}, nil
}

// Tokenize lowercases text and returns runs of at least two letters, digits or underscores.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
