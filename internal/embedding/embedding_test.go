package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestCosineZeroNorm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float32
	}{
		{name: "left zero", a: []float32{0, 0, 0}, b: []float32{1, 2, 3}},
		{name: "right zero", a: []float32{1, 2, 3}, b: []float32{0, 0, 0}},
		{name: "both zero", a: []float32{0, 0}, b: []float32{0, 0}},
		{name: "empty", a: []float32{}, b: []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Cosine(Vector{Values: tt.a, Model: "m"}, Vector{Values: tt.b, Model: "m"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != 0 || math.IsNaN(got) {
				t.Fatalf("expected exactly 0, got %v", got)
			}
		})
	}
}

func TestCosineValues(t *testing.T) {
	if got := CosineValues([]float32{1, 0}, []float32{1, 0}); got != 1 {
		t.Fatalf("expected 1 for identical vectors, got %v", got)
	}
	if got := CosineValues([]float32{1, 0}, []float32{-1, 0}); got != -1 {
		t.Fatalf("expected -1 for opposite vectors, got %v", got)
	}
	if got := CosineValues([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("expected 0 for orthogonal vectors, got %v", got)
	}
	got := CosineValues([]float32{1, 1}, []float32{1, 0})
	if math.Abs(got-math.Sqrt2/2) > 1e-9 {
		t.Fatalf("unexpected cosine %v", got)
	}
}

func TestCosineGuards(t *testing.T) {
	_, err := Cosine(Vector{Values: []float32{1}, Model: "a"}, Vector{Values: []float32{1}, Model: "b"})
	if !errors.Is(err, ErrModelMismatch) {
		t.Fatalf("expected ErrModelMismatch, got %v", err)
	}

	_, err = Cosine(Vector{Values: []float32{1}, Model: "a"}, Vector{Values: []float32{1, 2}, Model: "a"})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCosineZeroNormBeforeDimensions(t *testing.T) {
	score, err := Cosine(Vector{Values: []float32{0, 0}, Model: "a"}, Vector{Values: []float32{1, 2, 3}, Model: "a"})
	if err != nil || score != 0 {
		t.Fatalf("expected 0 and no error, got %v, %v", score, err)
	}

	score, err = Cosine(Vector{Model: "a"}, Vector{Model: "a"})
	if err != nil || score != 0 {
		t.Fatalf("expected 0 for empty vectors, got %v, %v", score, err)
	}

	if _, err := Cosine(Vector{Values: []float32{0}, Model: "a"}, Vector{Values: []float32{1}, Model: "b"}); !errors.Is(err, ErrModelMismatch) {
		t.Fatalf("model guard must still apply, got %v", err)
	}
}

type sizedEmbedder struct{ dims int }

func (s sizedEmbedder) Embed(context.Context, string) (Vector, error) { return Vector{Model: "sized"}, nil }
func (s sizedEmbedder) Model() string                                 { return "sized" }
func (s sizedEmbedder) Dimensions() int                               { return s.dims }

func TestValidateFrom(t *testing.T) {
	if err := ValidateFrom(sizedEmbedder{dims: 0}, Vector{Model: "sized"}); err != nil {
		t.Fatalf("zero-dimension embedder may return empty vectors, got %v", err)
	}
	if err := ValidateFrom(sizedEmbedder{dims: 4}, Vector{Model: "sized"}); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if err := ValidateFrom(&countingEmbedder{}, Vector{Model: "count"}); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable without dimensions, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Vector{Model: "m"}); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable for empty vector, got %v", err)
	}
	nan := float32(math.NaN())
	if err := Validate(Vector{Values: []float32{1, nan}, Model: "m"}); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable for NaN, got %v", err)
	}
	if err := Validate(Vector{Values: []float32{0, 0}, Model: "m"}); err != nil {
		t.Fatalf("zero vector is valid output, got %v", err)
	}
}

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	c.calls++
	return Vector{Values: []float32{float32(len(text))}, Model: "count"}, nil
}

func (c *countingEmbedder) Model() string { return "count" }

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCached(inner, 2)
	ctx := context.Background()

	for range 3 {
		if _, err := cached.Embed(ctx, "react"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 backend call, got %d", inner.calls)
	}

	_, _ = cached.Embed(ctx, "css")
	_, _ = cached.Embed(ctx, "html")
	if cached.Len() != 1 {
		t.Fatalf("expected cache to reset at limit, got %d entries", cached.Len())
	}
	if cached.Model() != "count" {
		t.Fatalf("unexpected model %q", cached.Model())
	}
}
