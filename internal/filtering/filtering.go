// Package filtering prunes loaded job postings before they are indexed.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
)

// Filter is a single step applied to raw postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, jobs []catalog.Job) ([]catalog.Job, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled filter and then applies them in order.
func Run(ctx context.Context, steps []Filter, jobs []catalog.Job, l *zap.Logger) ([]catalog.Job, error) {
	l = logger.OrNop(l)

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			l.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		l.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		jobs = next
	}

	return jobs, nil
}

// Loader loads src, runs steps over the postings and validates the result
// into a catalog. Its signature matches matching.LoadFunc.
func Loader(src catalog.Source, steps []Filter, l *zap.Logger) func(ctx context.Context) (*catalog.Catalog, error) {
	return func(ctx context.Context) (*catalog.Catalog, error) {
		jobs, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading catalog from %s: %w", src.Name(), err)
		}

		jobs, err = Run(ctx, steps, jobs, l)
		if err != nil {
			return nil, fmt.Errorf("filtering catalog: %w", err)
		}

		return catalog.New(jobs)
	}
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// toggle carries the shared enable/disable state of filters.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }
