package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a catalog document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension. Unknown extensions are JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// FileSource reads a catalog document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file " + s.Path }

func (s FileSource) Load(ctx context.Context) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}

	return Decode(data, FormatFromPath(s.Path))
}

// Decode parses a list of jobs, either bare or under a "jobs" key. Scalar
// fields are weakly typed so numeric ids become strings.
func Decode(data []byte, format Format) ([]Job, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	}

	if wrapped, ok := raw.(map[string]any); ok {
		raw = wrapped["jobs"]
	}

	if raw == nil {
		return []Job{}, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("catalog document must be a list of jobs, got %T", raw)
	}

	jobs := make([]Job, 0, len(items))
	for i, item := range items {
		var job Job
		if err := decodeItem(item, &job); err != nil {
			return nil, fmt.Errorf("job #%d: %w", i, err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func decodeItem(item any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(item)
}

// Write stores jobs at path as indented JSON. The file is replaced by rename
// so watchers never observe a partial document.
func Write(path string, jobs []Job) error {
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
