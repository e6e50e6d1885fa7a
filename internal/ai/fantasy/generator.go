// Package fantasy implements ai.Generator for OpenAI, Anthropic and OpenRouter models.
package fantasy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/ai"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
)

// Config selects a provider and model.
type Config struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api-key"`
	BaseURL  string `mapstructure:"base-url"`
	Model    string `mapstructure:"model"`
}

var _ ai.Generator = (*Generator)(nil)

type completeFunc func(ctx context.Context, prompt string) (string, error)

type Generator struct {
	complete completeFunc
	name     string
	model    string
	logger   *zap.Logger
}

func New(ctx context.Context, cfg Config, l *zap.Logger) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ai.ErrNotConfigured)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model is required")
	}

	var provider fantasy.Provider
	var err error

	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{openai.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		provider, err = openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		provider, err = anthropic.New(opts...)
	case "openrouter":
		provider, err = openrouter.New(openrouter.WithAPIKey(cfg.APIKey))
	default:
		return nil, fmt.Errorf("unsupported provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	model, err := provider.LanguageModel(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("get language model: %w", err)
	}

	return newGenerator(agentComplete(model), cfg.Provider, cfg.Model, l), nil
}

func newGenerator(complete completeFunc, name, model string, l *zap.Logger) *Generator {
	return &Generator{
		complete: complete,
		name:     name,
		model:    model,
		logger:   logger.WithBackend(l, name, model),
	}
}

func agentComplete(model fantasy.LanguageModel) completeFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		agent := fantasy.NewAgent(model)
		result, err := agent.Generate(ctx, fantasy.AgentCall{Prompt: prompt})
		if err != nil {
			return "", err
		}
		return result.Response.Content.Text(), nil
	}
}

// GenerateContent prepends the system instruction to the prompt as a single user turn.
func (g *Generator) GenerateContent(ctx context.Context, system, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}
	if system = strings.TrimSpace(system); system != "" {
		prompt = system + "\n\n" + prompt
	}

	out, err := g.complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("generation failed", zap.Error(err))
		return "", fmt.Errorf("generate: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%s returned empty response", g.name)
	}
	return out, nil
}

func (g *Generator) Model() string {
	return g.name + "/" + g.model
}
