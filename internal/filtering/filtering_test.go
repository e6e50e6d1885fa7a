package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
)

func jobs() []catalog.Job {
	return []catalog.Job{
		{ID: "j1", Title: "Backend", Description: "go", Company: "Acme"},
		{ID: "j2", Title: "Frontend", Description: "react", Company: "Globex"},
		{ID: "j1", Title: "Backend again", Description: "go", Company: "Acme"},
		{ID: "j3", Title: "Data", Description: "python", Company: "Initech"},
	}
}

func jobIDs(in []catalog.Job) []string {
	out := make([]string, len(in))
	for i, j := range in {
		out[i] = j.ID
	}
	return out
}

func TestDuplicatesKeepsFirst(t *testing.T) {
	out, step, err := NewDuplicates(nil).Apply(context.Background(), jobs())
	require.NoError(t, err)

	assert.Equal(t, []string{"j1", "j2", "j3"}, jobIDs(out))
	assert.Equal(t, "Backend", out[0].Title)
	assert.Equal(t, Step{Initial: 4, Dropped: 1, Left: 3}, step)
}

func TestCompaniesCaseInsensitive(t *testing.T) {
	f := NewCompanies([]string{" acme ", "INITECH"}, nil)
	require.NoError(t, f.Validate())

	out, step, err := f.Apply(context.Background(), jobs())
	require.NoError(t, err)

	assert.Equal(t, []string{"j2"}, jobIDs(out))
	assert.Equal(t, 3, step.Dropped)

	require.Error(t, NewCompanies([]string{"acme", " "}, nil).Validate())
}

func TestExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")
	ctx := context.Background()

	// Missing file excludes nothing.
	out, step, err := NewExcludeFile(path, nil).Apply(ctx, jobs())
	require.NoError(t, err)
	assert.Len(t, out, 4)
	assert.Equal(t, 0, step.Dropped)

	excluded := ExcludeJobs([]catalog.Job{{ID: "j2", Title: "Frontend"}})
	require.NoError(t, excluded.ToFile(path))

	out, _, err = NewExcludeFile(path, nil).Apply(ctx, jobs())
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j1", "j3"}, jobIDs(out))

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	_, _, err = NewExcludeFile(path, nil).Apply(ctx, jobs())
	require.Error(t, err)
}

func TestExcludedAppendAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")

	loaded, err := LoadExcluded(path)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	loaded, err = LoadExcluded(path)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)

	loaded.Append(ExcludeJobs([]catalog.Job{{ID: "a"}, {ID: "b"}}))
	loaded.Append(ExcludeJobs([]catalog.Job{{ID: "b"}, {ID: "c"}}))
	assert.Equal(t, []string{"a", "b", "c"}, loaded.IDs())

	require.NoError(t, loaded.ToFile(path))
	again, err := LoadExcluded(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, again.IDs())
	assert.False(t, again.Items[0].ExcludedAt.IsZero())
}

func TestRunSkipsDisabledAndLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	steps := []Filter{NewDuplicates(nil), NewCompanies([]string{"globex"}, nil)}
	DisableByName(steps, "companies", "disabled by flag")

	out, err := Run(context.Background(), steps, jobs(), zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j2", "j3"}, jobIDs(out))

	assert.Equal(t, 1, logs.FilterMessage("filter step").Len())
	assert.Equal(t, 1, logs.FilterMessage("filter disabled").Len())

	statuses := Describe(steps)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Enabled)
	assert.False(t, statuses[1].Enabled)
	assert.Equal(t, "disabled by flag", statuses[1].Reason)
	assert.Equal(t, "globex", statuses[1].Details["companies"])
}

func TestRunStopsOnInvalidFilter(t *testing.T) {
	steps := []Filter{NewDuplicates(nil), NewCompanies([]string{""}, nil)}
	_, err := Run(context.Background(), steps, jobs(), nil)
	require.ErrorContains(t, err, "companies")
}

type stubSource struct {
	jobs []catalog.Job
	err  error
}

func (s stubSource) Load(context.Context) ([]catalog.Job, error) { return s.jobs, s.err }
func (s stubSource) Name() string                                  { return "stub" }

func TestLoaderBuildsCatalog(t *testing.T) {
	load := Loader(stubSource{jobs: jobs()}, []Filter{NewDuplicates(nil)}, nil)
	c, err := load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j2", "j3"}, c.IDs())

	// Without deduplication the repeated id fails validation.
	_, err = Loader(stubSource{jobs: jobs()}, nil, nil)(context.Background())
	require.ErrorIs(t, err, catalog.ErrDuplicateID)

	boom := errors.New("boom")
	_, err = Loader(stubSource{err: boom}, nil, nil)(context.Background())
	require.ErrorIs(t, err, boom)
}
