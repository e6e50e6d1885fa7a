// Package catalog holds validated, immutable sets of job postings and the
// sources they are loaded from.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingID        = errors.New("job id is required")
	ErrDuplicateID      = errors.New("duplicate job id")
	ErrEmptyDescription = errors.New("job description is empty")
)

// Job is a single posting. Description is the text used for matching.
type Job struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Company     string `json:"company,omitempty" yaml:"company,omitempty"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
}

// Source loads raw postings from storage or a remote API.
type Source interface {
	Load(ctx context.Context) ([]Job, error)
	Name() string
}

// Catalog is an ordered, read-only set of jobs with unique ids.
type Catalog struct {
	jobs  []Job
	index map[string]int
}

// New validates jobs and freezes them in input order.
func New(jobs []Job) (*Catalog, error) {
	c := &Catalog{
		jobs:  make([]Job, 0, len(jobs)),
		index: make(map[string]int, len(jobs)),
	}

	for i, job := range jobs {
		job.ID = strings.TrimSpace(job.ID)
		job.Title = strings.TrimSpace(job.Title)

		if job.ID == "" {
			return nil, fmt.Errorf("job #%d: %w", i, ErrMissingID)
		}
		if strings.TrimSpace(job.Description) == "" {
			return nil, fmt.Errorf("job %q: %w", job.ID, ErrEmptyDescription)
		}
		if _, ok := c.index[job.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, job.ID)
		}

		c.index[job.ID] = len(c.jobs)
		c.jobs = append(c.jobs, job)
	}

	return c, nil
}

// Load reads and validates the jobs of src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	jobs, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", src.Name(), err)
	}

	c, err := New(jobs)
	if err != nil {
		return nil, fmt.Errorf("validating catalog from %s: %w", src.Name(), err)
	}

	return c, nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.jobs)
}

// Jobs returns a copy of the postings in catalog order.
func (c *Catalog) Jobs() []Job {
	if c == nil {
		return nil
	}
	out := make([]Job, len(c.jobs))
	copy(out, c.jobs)
	return out
}

// At returns the job at position i.
func (c *Catalog) At(i int) Job {
	return c.jobs[i]
}

// Get looks a job up by id.
func (c *Catalog) Get(id string) (Job, bool) {
	if c == nil {
		return Job{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Job{}, false
	}
	return c.jobs[i], true
}

// Descriptions returns the description of every job in catalog order.
func (c *Catalog) Descriptions() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.jobs[i].Description
	}
	return out
}

// IDs returns job ids in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.jobs[i].ID
	}
	return out
}
