// Package embedding defines text-to-vector backends and vector similarity.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrBackendUnavailable means the backend was not initialized or produced unusable output.
	ErrBackendUnavailable = errors.New("embedding backend unavailable")
	// ErrModelMismatch is returned when comparing vectors from different models.
	ErrModelMismatch = errors.New("embedding model mismatch")
	// ErrDimensionMismatch is returned when comparing vectors of different length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Vector is a dense embedding tagged with the model that produced it.
type Vector struct {
	Values []float32
	Model  string
}

func (v Vector) Len() int { return len(v.Values) }

// Embedder turns text into a vector. Implementations must be deterministic
// for a given model and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Model() string
}

// CorpusEmbedder needs a document corpus before it can embed. Fit returns a
// new Embedder bound to the corpus and leaves the receiver untouched.
type CorpusEmbedder interface {
	Embedder
	Fit(ctx context.Context, docs []string) (Embedder, error)
}

// Scorer compares two vectors.
type Scorer func(a, b Vector) (float64, error)

// Sized is implemented by embedders with a fixed output length.
type Sized interface {
	Dimensions() int
}

// Cosine is the cosine similarity of a and b in [-1, 1]. Vectors from
// different models are an error. Otherwise a zero-norm vector on either side
// scores exactly 0, whatever the other's length.
func Cosine(a, b Vector) (float64, error) {
	if a.Model != b.Model {
		return 0, fmt.Errorf("%w: %q vs %q", ErrModelMismatch, a.Model, b.Model)
	}
	if zeroNorm(a.Values) || zeroNorm(b.Values) {
		return 0, nil
	}
	if len(a.Values) != len(b.Values) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a.Values), len(b.Values))
	}

	return CosineValues(a.Values, b.Values), nil
}

// CosineValues computes cosine similarity over raw values of equal length.
func CosineValues(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(score):
		return 0
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}

func zeroNorm(values []float32) bool {
	for _, x := range values {
		if x != 0 {
			return false
		}
	}
	return true
}

// ValidateFrom checks v as produced by e. An embedder that declares zero
// dimensions, such as a lexical model fitted on a corpus without terms,
// legitimately returns empty vectors.
func ValidateFrom(e Embedder, v Vector) error {
	if s, ok := e.(Sized); ok && s.Dimensions() == 0 && len(v.Values) == 0 {
		return nil
	}
	return Validate(v)
}

// Validate rejects empty or non-finite vectors.
func Validate(v Vector) error {
	if len(v.Values) == 0 {
		return fmt.Errorf("%w: empty vector from model %q", ErrBackendUnavailable, v.Model)
	}
	for i, x := range v.Values {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("%w: non-finite value at %d from model %q", ErrBackendUnavailable, i, v.Model)
		}
	}
	return nil
}
