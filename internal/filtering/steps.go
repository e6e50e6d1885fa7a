package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
)

// exclude drops the jobs for which drop returns true and reports the step.
func exclude(jobs []catalog.Job, drop func(catalog.Job) bool) ([]catalog.Job, []string, Step) {
	kept := make([]catalog.Job, 0, len(jobs))
	var dropped []string
	for _, job := range jobs {
		if drop(job) {
			dropped = append(dropped, job.ID)
			continue
		}
		kept = append(kept, job)
	}
	return kept, dropped, Step{Initial: len(jobs), Dropped: len(dropped), Left: len(kept)}
}

type duplicatesFilter struct {
	toggle
	logger *zap.Logger
}

// NewDuplicates keeps the first posting of every id.
func NewDuplicates(l *zap.Logger) Filter {
	return &duplicatesFilter{logger: logger.OrNop(l)}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Validate() error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, jobs []catalog.Job) ([]catalog.Job, Step, error) {
	seen := make(map[string]struct{}, len(jobs))
	kept, dropped, step := exclude(jobs, func(job catalog.Job) bool {
		id := strings.TrimSpace(job.ID)
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
		return false
	})

	if len(dropped) > 0 {
		f.logger.Info("dropping repeated postings", zap.Strings("job_ids", dropped))
	}
	return kept, step, nil
}

type excludeFileFilter struct {
	toggle
	path   string
	logger *zap.Logger
}

// NewExcludeFile drops jobs listed in the exclude file at path. An empty path drops nothing.
func NewExcludeFile(path string, l *zap.Logger) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path), logger: logger.OrNop(l)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, jobs []catalog.Job) ([]catalog.Job, Step, error) {
	if f.path == "" {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}

	excluded, err := LoadExcluded(f.path)
	if err != nil {
		return nil, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	ids := make(map[string]struct{}, len(excluded.Items))
	for _, id := range excluded.IDs() {
		ids[id] = struct{}{}
	}

	kept, dropped, step := exclude(jobs, func(job catalog.Job) bool {
		_, ok := ids[job.ID]
		return ok
	})

	if len(dropped) > 0 {
		f.logger.Info("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", step.Left),
		)
	}
	return kept, step, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type companiesFilter struct {
	toggle
	companies []string
	logger    *zap.Logger
}

// NewCompanies drops jobs posted by any of companies, compared case-insensitively.
func NewCompanies(companies []string, l *zap.Logger) Filter {
	return &companiesFilter{companies: companies, logger: logger.OrNop(l)}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate() error {
	for i, c := range f.companies {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("company #%d is empty", i)
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, jobs []catalog.Job) ([]catalog.Job, Step, error) {
	if len(f.companies) == 0 {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}

	blocked := make(map[string]struct{}, len(f.companies))
	for _, c := range f.companies {
		blocked[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}

	kept, dropped, step := exclude(jobs, func(job catalog.Job) bool {
		_, ok := blocked[strings.ToLower(strings.TrimSpace(job.Company))]
		return ok
	})

	if len(dropped) > 0 {
		f.logger.Info("excluding jobs by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", step.Left),
		)
	}
	return kept, step, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
