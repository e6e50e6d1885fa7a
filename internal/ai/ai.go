// Package ai defines the text generation backends used for learning path recommendations.
package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no generation backend has credentials.
var ErrNotConfigured = errors.New("text generation backend is not configured")

// Generator produces a text completion for a system instruction and a user prompt.
type Generator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
	Model() string
}
