// Package gemini embeds text with Gemini embedding models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/nity4jain/skillbridge-mvp/internal/embedding"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
)

const (
	defaultModel    = "gemini-embedding-001"
	defaultTaskType = "SEMANTIC_SIMILARITY"
)

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

var _ embedding.Embedder = (*Embedder)(nil)

// Embedder calls the Gemini API. It holds no mutable state and is safe for concurrent use.
type Embedder struct {
	models     contentEmbedder
	model      string
	dimensions int32
	logger     *zap.Logger
}

// New creates an Embedder. dimensions <= 0 keeps the model default.
func New(ctx context.Context, apiKey, model string, dimensions int, l *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", embedding.ErrBackendUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %w", embedding.ErrBackendUnavailable, err)
	}

	return newEmbedder(client.Models, model, dimensions, l), nil
}

func newEmbedder(models contentEmbedder, model string, dimensions int, l *zap.Logger) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Embedder{
		models:     models,
		model:      model,
		dimensions: int32(max(dimensions, 0)),
		logger:     logger.WithBackend(l, "gemini", model),
	}
}

func (e *Embedder) Model() string {
	if e.dimensions > 0 {
		return fmt.Sprintf("%s/%d", e.model, e.dimensions)
	}
	return e.model
}

func (e *Embedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	if e == nil || e.models == nil {
		return embedding.Vector{}, fmt.Errorf("%w: gemini embedder is not initialized", embedding.ErrBackendUnavailable)
	}

	cfg := &genai.EmbedContentConfig{TaskType: defaultTaskType}
	if e.dimensions > 0 {
		cfg.OutputDimensionality = &e.dimensions
	}

	resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			e.logger.Warn("embed content failed",
				zap.Int("code", apiErr.Code),
				zap.String("status", apiErr.Status),
			)
		}
		return embedding.Vector{}, fmt.Errorf("%w: embed content: %w", embedding.ErrBackendUnavailable, err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return embedding.Vector{}, fmt.Errorf("%w: gemini api returned no embeddings", embedding.ErrBackendUnavailable)
	}

	v := embedding.Vector{Values: resp.Embeddings[0].Values, Model: e.Model()}
	if err := embedding.Validate(v); err != nil {
		return embedding.Vector{}, err
	}

	e.logger.Debug("embedded text",
		zap.Int("text_length", len(text)),
		zap.Int("dimensions", v.Len()),
	)

	return v, nil
}
