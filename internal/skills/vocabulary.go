package skills

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyLabel     = errors.New("empty skill label")
	ErrDuplicateLabel = errors.New("duplicate skill label")
)

// defaultLabels is the built-in vocabulary used when none is configured.
var defaultLabels = []string{
	"Python", "Java", "JavaScript", "SQL", "HTML", "CSS", "Django", "Flask",
	"React", "Node.js", "Docker", "Git", "PostgreSQL", "MongoDB", "AWS", "REST",
	"GraphQL", "Machine Learning", "Data Analysis", "Statistics", "Azure", "GCP",
	"Kubernetes", "CI/CD", "Agile", "Scrum", "Communication", "Leadership",
}

// Vocabulary is an ordered set of canonical skill labels compared case-insensitively.
type Vocabulary struct {
	labels []string
	index  map[string]int
}

// NewVocabulary validates labels and keeps them in input order.
func NewVocabulary(labels []string) (*Vocabulary, error) {
	v := &Vocabulary{
		labels: make([]string, 0, len(labels)),
		index:  make(map[string]int, len(labels)),
	}

	for i, raw := range labels {
		label := strings.TrimSpace(raw)
		if label == "" {
			return nil, fmt.Errorf("label #%d: %w", i, ErrEmptyLabel)
		}

		key := normalize(label)
		if prev, ok := v.index[key]; ok {
			return nil, fmt.Errorf("%w: %q collides with %q", ErrDuplicateLabel, label, v.labels[prev])
		}

		v.index[key] = len(v.labels)
		v.labels = append(v.labels, label)
	}

	return v, nil
}

// DefaultVocabulary returns the built-in skill list.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(defaultLabels)
	if err != nil {
		panic(err)
	}
	return v
}

// LoadVocabularyFile reads a YAML (or JSON) list of labels.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}

	var labels []string
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("decoding vocabulary file %q: %w", path, err)
	}

	return NewVocabulary(labels)
}

// Labels returns a copy of the canonical labels in vocabulary order.
func (v *Vocabulary) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

func (v *Vocabulary) Len() int {
	return len(v.labels)
}

// Lookup returns the canonical spelling for s, compared case-insensitively
// with whitespace collapsed.
func (v *Vocabulary) Lookup(s string) (string, bool) {
	i, ok := v.index[normalize(s)]
	if !ok {
		return "", false
	}
	return v.labels[i], true
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
