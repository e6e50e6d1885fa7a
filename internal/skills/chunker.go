package skills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// ErrBackendUnavailable is returned when the chunking backend cannot serve requests.
var ErrBackendUnavailable = errors.New("chunking backend unavailable")

// Chunker splits text into noun-phrase spans.
type Chunker interface {
	NounChunks(ctx context.Context, text string) ([]string, error)
	Name() string
}

// NopChunker yields no chunks. Extraction then relies on vocabulary patterns only.
type NopChunker struct{}

func (NopChunker) NounChunks(context.Context, string) ([]string, error) { return nil, nil }

func (NopChunker) Name() string { return "none" }

// ProseChunker derives noun chunks from part-of-speech tags produced by prose.
// The tagger model is shared, so calls are serialized.
type ProseChunker struct {
	mu sync.Mutex
}

// NewProseChunker loads the tagging model by running it once.
func NewProseChunker() (*ProseChunker, error) {
	c := &ProseChunker{}
	if _, err := c.tag("Warm up the tagger."); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return c, nil
}

func (c *ProseChunker) Name() string { return "prose" }

func (c *ProseChunker) NounChunks(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	tokens, err := c.tag(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return chunkTokens(tokens), nil
}

func (c *ProseChunker) tag(text string) ([]taggedToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, err
	}

	raw := doc.Tokens()
	tokens := make([]taggedToken, 0, len(raw))
	for _, tok := range raw {
		tokens = append(tokens, taggedToken{text: tok.Text, tag: tok.Tag})
	}
	return tokens, nil
}

type taggedToken struct {
	text string
	tag  string
}

func isNominal(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}

func isModifier(tag string) bool {
	return strings.HasPrefix(tag, "JJ") || tag == "VBG"
}

// chunkTokens returns maximal runs of modifiers and nouns that end in a noun.
// When a run starts with modifiers, its noun-only tail is returned as well.
func chunkTokens(tokens []taggedToken) []string {
	var chunks []string

	flush := func(run []taggedToken) {
		// trim trailing modifiers, a chunk is headed by a noun
		for len(run) > 0 && !isNominal(run[len(run)-1].tag) {
			run = run[:len(run)-1]
		}
		if len(run) == 0 {
			return
		}

		chunks = append(chunks, joinTokens(run))

		head := 0
		for head < len(run) && !isNominal(run[head].tag) {
			head++
		}
		if head > 0 {
			chunks = append(chunks, joinTokens(run[head:]))
		}
	}

	start := -1
	for i, tok := range tokens {
		if isNominal(tok.tag) || isModifier(tok.tag) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			flush(tokens[start:i])
			start = -1
		}
	}
	if start >= 0 {
		flush(tokens[start:])
	}

	return chunks
}

func joinTokens(tokens []taggedToken) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.text
	}
	return strings.Join(parts, " ")
}
