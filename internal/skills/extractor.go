package skills

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/logger"
)

// OverlapPolicy controls how labels whose matches nest inside longer labels are reported.
type OverlapPolicy string

const (
	// OverlapKeepAll reports every label that matches anywhere ("Node" and "Node.js").
	OverlapKeepAll OverlapPolicy = "keep-all"
	// OverlapLongest drops a label when all of its occurrences lie inside
	// occurrences of longer matched labels.
	OverlapLongest OverlapPolicy = "longest"
)

// ParseOverlapPolicy maps a config value to a policy. Empty means OverlapKeepAll.
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch p := OverlapPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", OverlapKeepAll:
		return OverlapKeepAll, nil
	case OverlapLongest:
		return OverlapLongest, nil
	default:
		return "", fmt.Errorf("unknown overlap policy %q", s)
	}
}

var leadingDeterminers = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"my": {}, "our": {}, "your": {}, "their": {}, "his": {}, "her": {}, "its": {},
	"some": {}, "any": {},
}

// Extractor maps free text to canonical vocabulary labels.
type Extractor struct {
	vocab    *Vocabulary
	patterns []*pattern
	chunker  Chunker
	policy   OverlapPolicy
	logger   *zap.Logger
}

// NewExtractor builds an extractor. A nil chunker disables the noun-chunk pass.
func NewExtractor(vocab *Vocabulary, chunker Chunker, policy OverlapPolicy, l *zap.Logger) *Extractor {
	if chunker == nil {
		chunker = NopChunker{}
	}
	if policy == "" {
		policy = OverlapKeepAll
	}

	patterns := make([]*pattern, 0, vocab.Len())
	for _, label := range vocab.labels {
		patterns = append(patterns, newPattern(label))
	}

	return &Extractor{
		vocab:    vocab,
		patterns: patterns,
		chunker:  chunker,
		policy:   policy,
		logger:   logger.WithFields(l, zap.String("chunker", chunker.Name())),
	}
}

// Extract returns the deduplicated canonical labels found in text, sorted
// case-insensitively. Chunking backend failures are returned, never hidden.
func (e *Extractor) Extract(ctx context.Context, text string) ([]string, error) {
	found := e.matchPatterns(text)

	chunks, err := e.chunker.NounChunks(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("noun chunks: %w", err)
	}

	added := 0
	for _, chunk := range chunks {
		label, ok := e.vocab.Lookup(stripDeterminers(chunk))
		if !ok {
			continue
		}
		if _, seen := found[label]; !seen {
			found[label] = struct{}{}
			added++
		}
	}

	result := sortedLabels(found)

	e.logger.Debug("skills extracted",
		zap.Int("text_length", len(text)),
		zap.Int("chunks", len(chunks)),
		zap.Int("added_by_chunks", added),
		zap.Strings("skills", result),
	)

	return result, nil
}

// Extract runs the vocabulary patterns over text without noun chunking.
func Extract(text string, vocab *Vocabulary) []string {
	e := NewExtractor(vocab, NopChunker{}, OverlapKeepAll, nil)
	return sortedLabels(e.matchPatterns(text))
}

func (e *Extractor) matchPatterns(text string) map[string]struct{} {
	found := make(map[string]struct{})
	if text == "" {
		return found
	}

	occurrences := make(map[string][]span)
	for _, p := range e.patterns {
		if spans := p.find(text); len(spans) > 0 {
			occurrences[p.label] = spans
		}
	}

	for label, spans := range occurrences {
		if e.policy == OverlapLongest && shadowed(label, spans, occurrences) {
			continue
		}
		found[label] = struct{}{}
	}

	return found
}

// shadowed reports whether every span of label sits inside a longer span of another label.
func shadowed(label string, spans []span, occurrences map[string][]span) bool {
	for _, s := range spans {
		covered := false
		for other, outer := range occurrences {
			if other == label {
				continue
			}
			for _, o := range outer {
				if o.len() > s.len() && o.contains(s) {
					covered = true
					break
				}
			}
			if covered {
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

func stripDeterminers(chunk string) string {
	words := strings.Fields(chunk)
	for len(words) > 0 {
		if _, ok := leadingDeterminers[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func sortedLabels(set map[string]struct{}) []string {
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}

	slices.SortFunc(labels, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	return labels
}
