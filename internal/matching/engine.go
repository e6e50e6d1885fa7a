package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
)

// ErrNotReady is returned by Engine.Rank before the first index is installed.
var ErrNotReady = errors.New("matching index is not loaded")

// LoadFunc produces the catalog to index.
type LoadFunc func(ctx context.Context) (*catalog.Catalog, error)

// Engine serves ranking requests from the current index. Reload builds a
// complete index aside and swaps it in atomically, so readers always see
// either the old or the new snapshot.
type Engine struct {
	strategy Strategy
	load     LoadFunc
	logger   *zap.Logger

	current  atomic.Pointer[Index]
	reloadMu sync.Mutex
}

func NewEngine(s Strategy, load LoadFunc, l *zap.Logger) *Engine {
	model := ""
	if s.Embedder != nil {
		model = s.Embedder.Model()
	}

	return &Engine{
		strategy: s,
		load:     load,
		logger:   logger.WithBackend(l, s.Name, model),
	}
}

// Reload loads and indexes a fresh catalog. On failure the current index stays in place.
func (e *Engine) Reload(ctx context.Context) error {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	started := time.Now()

	c, err := e.load(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	ix, err := BuildIndex(ctx, e.strategy, c)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	previous := e.current.Swap(ix)

	fields := []zap.Field{
		zap.Int("jobs", c.Len()),
		zap.String("index_model", ix.Model()),
		zap.Duration("took", time.Since(started)),
	}
	if previous != nil {
		fields = append(fields, zap.Int("previous_jobs", previous.Catalog().Len()))
	}
	e.logger.Info("matching index installed", fields...)

	return nil
}

// Install swaps in a prebuilt index.
func (e *Engine) Install(ix *Index) {
	e.current.Store(ix)
}

// Current returns the installed index, or nil.
func (e *Engine) Current() *Index {
	return e.current.Load()
}

// Rank ranks query against the current index.
func (e *Engine) Rank(ctx context.Context, query string, topK int) ([]Result, error) {
	ix := e.current.Load()
	if ix == nil {
		return nil, ErrNotReady
	}

	results, err := ix.Rank(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if len(results) > 0 {
		e.logger.Debug("ranked jobs",
			zap.Int("candidates", ix.Catalog().Len()),
			zap.Int("returned", len(results)),
			zap.String("top_job", results[0].Job.ID),
			zap.Float64("top_score", results[0].Score),
		)
	}

	return results, nil
}
