package tfidf

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/nity4jain/skillbridge-mvp/internal/embedding"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Node.js, PostgreSQL & REST APIs; C++ a b_c")
	want := []string{"node", "js", "postgresql", "rest", "apis", "b_c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestUnfittedVectorizer(t *testing.T) {
	_, err := New().Embed(context.Background(), "react")
	if !errors.Is(err, embedding.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestFitEmptyCorpus(t *testing.T) {
	ctx := context.Background()
	fitted, err := New().Fit(ctx, []string{"C", "!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := fitted.(*Model)
	if m.Dimensions() != 0 {
		t.Fatalf("expected no terms, got %d", m.Dimensions())
	}

	v, err := m.Embed(ctx, "I write C and Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := embedding.ValidateFrom(m, v); err != nil {
		t.Fatalf("empty vector of an empty model must validate, got %v", err)
	}
	if score, err := embedding.Cosine(v, v); err != nil || score != 0 {
		t.Fatalf("expected 0 and no error, got %v, %v", score, err)
	}
}

func TestFitAndEmbed(t *testing.T) {
	ctx := context.Background()
	docs := []string{
		"Node.js PostgreSQL Docker REST APIs",
		"React CSS HTML JavaScript",
	}

	fitted, err := New().Fit(ctx, docs)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	m := fitted.(*Model)
	if m.Dimensions() != 10 {
		t.Fatalf("expected 10 terms, got %d", m.Dimensions())
	}

	// every term occurs in one of two docs
	wantIDF := math.Log(3.0/2.0) + 1
	for i, idf := range m.idf {
		if math.Abs(idf-wantIDF) > 1e-12 {
			t.Fatalf("idf[%d] = %v, want %v", i, idf, wantIDF)
		}
	}

	query, err := m.Embed(ctx, "Experienced in React and CSS design")
	if err != nil {
		t.Fatalf("embed query: %v", err)
	}

	backend, _ := m.Embed(ctx, docs[0])
	frontend, _ := m.Embed(ctx, docs[1])

	j1, err := embedding.Cosine(query, backend)
	if err != nil {
		t.Fatal(err)
	}
	j2, err := embedding.Cosine(query, frontend)
	if err != nil {
		t.Fatal(err)
	}

	if !(j2 > j1) {
		t.Fatalf("expected frontend %v > backend %v", j2, j1)
	}
	if j1 != 0 {
		t.Fatalf("expected no overlap with backend, got %v", j1)
	}

	unknown, err := m.Embed(ctx, "gardening and cooking")
	if err != nil {
		t.Fatal(err)
	}
	if score := embedding.CosineValues(unknown.Values, frontend.Values); score != 0 {
		t.Fatalf("expected zero vector to score 0, got %v", score)
	}
}

func TestModelIDIsDeterministic(t *testing.T) {
	ctx := context.Background()

	a, err := New().Fit(ctx, []string{"go grpc", "react css"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := New().Fit(ctx, []string{"go grpc", "react css"})
	if err != nil {
		t.Fatal(err)
	}
	c, err := New().Fit(ctx, []string{"go grpc", "react html"})
	if err != nil {
		t.Fatal(err)
	}

	if a.Model() != b.Model() {
		t.Fatalf("same corpus produced %q and %q", a.Model(), b.Model())
	}
	if a.Model() == c.Model() {
		t.Fatalf("different corpora share model id %q", a.Model())
	}

	va, _ := a.Embed(ctx, "react")
	vc, _ := c.Embed(ctx, "react")
	if _, err := embedding.Cosine(va, vc); !errors.Is(err, embedding.ErrModelMismatch) {
		t.Fatalf("expected ErrModelMismatch across corpora, got %v", err)
	}
}
