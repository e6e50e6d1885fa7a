// Package matching ranks catalog jobs against free text.
package matching

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
	"github.com/nity4jain/skillbridge-mvp/internal/embedding"
)

// DefaultTopK is used when a non-positive topK is requested.
const DefaultTopK = 5

// Strategy pairs a text-to-vector backend with a vector scorer.
type Strategy struct {
	Name     string
	Embedder embedding.Embedder
	// Score defaults to embedding.Cosine.
	Score embedding.Scorer
}

// Result is a scored job. Scores are raw cosine values in [-1, 1].
type Result struct {
	Job   catalog.Job `json:"job"`
	Score float64     `json:"score"`
}

// Index is an immutable snapshot of a catalog and the vectors of its
// descriptions. It is safe for concurrent use.
type Index struct {
	catalog  *catalog.Catalog
	strategy string
	embedder embedding.Embedder
	score    embedding.Scorer
	vectors  []embedding.Vector
	builtAt  time.Time
}

// BuildIndex embeds every description of c once. Corpus embedders are fitted
// on the descriptions first.
func BuildIndex(ctx context.Context, s Strategy, c *catalog.Catalog) (*Index, error) {
	if s.Embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", embedding.ErrBackendUnavailable)
	}
	if c == nil {
		c, _ = catalog.New(nil)
	}

	ix := &Index{
		catalog:  c,
		strategy: s.Name,
		embedder: s.Embedder,
		score:    s.Score,
		builtAt:  time.Now(),
	}
	if ix.score == nil {
		ix.score = embedding.Cosine
	}
	if c.Len() == 0 {
		return ix, nil
	}

	docs := c.Descriptions()

	if corpus, ok := s.Embedder.(embedding.CorpusEmbedder); ok {
		fitted, err := corpus.Fit(ctx, docs)
		if err != nil {
			return nil, fmt.Errorf("fitting %s: %w", corpus.Model(), err)
		}
		ix.embedder = fitted
	}

	ix.vectors = make([]embedding.Vector, len(docs))
	for i, doc := range docs {
		v, err := ix.embedder.Embed(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("embedding job %q: %w", c.At(i).ID, err)
		}
		if err := embedding.ValidateFrom(ix.embedder, v); err != nil {
			return nil, fmt.Errorf("embedding job %q: %w", c.At(i).ID, err)
		}
		if i > 0 && (v.Model != ix.vectors[0].Model || v.Len() != ix.vectors[0].Len()) {
			return nil, fmt.Errorf("job %q: %w: got %s/%d, index uses %s/%d", c.At(i).ID,
				embedding.ErrModelMismatch, v.Model, v.Len(), ix.vectors[0].Model, ix.vectors[0].Len())
		}
		ix.vectors[i] = v
	}

	return ix, nil
}

// Rank scores query against every job and returns the best topK in
// descending score order. Equal scores keep catalog order.
func (ix *Index) Rank(ctx context.Context, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if ix == nil || ix.catalog.Len() == 0 {
		return []Result{}, nil
	}

	qv, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if err := embedding.ValidateFrom(ix.embedder, qv); err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results := make([]Result, len(ix.vectors))
	for i, jv := range ix.vectors {
		score, err := ix.score(qv, jv)
		if err != nil {
			return nil, fmt.Errorf("scoring job %q: %w", ix.catalog.At(i).ID, err)
		}
		results[i] = Result{Job: ix.catalog.At(i), Score: score}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Catalog returns the indexed catalog.
func (ix *Index) Catalog() *catalog.Catalog { return ix.catalog }

// Model is the identifier of the model that produced the cached vectors.
func (ix *Index) Model() string { return ix.embedder.Model() }

// Strategy is the name of the strategy the index was built with.
func (ix *Index) Strategy() string { return ix.strategy }

func (ix *Index) BuiltAt() time.Time { return ix.builtAt }

// RankJobs ranks query against an explicit catalog without keeping the index.
func RankJobs(ctx context.Context, s Strategy, query string, c *catalog.Catalog, topK int) ([]Result, error) {
	if c.Len() == 0 {
		return []Result{}, nil
	}

	ix, err := BuildIndex(ctx, s, c)
	if err != nil {
		return nil, err
	}
	return ix.Rank(ctx, query, topK)
}
