package fantasy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nity4jain/skillbridge-mvp/internal/ai"
)

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "openai", Model: "gpt-4o-mini"}, nil)
	require.ErrorIs(t, err, ai.ErrNotConfigured)

	_, err = New(context.Background(), Config{Provider: "openai", APIKey: "k"}, nil)
	require.ErrorContains(t, err, "model is required")

	_, err = New(context.Background(), Config{Provider: "cohere", APIKey: "k", Model: "m"}, nil)
	require.ErrorContains(t, err, "unsupported provider")
}

func TestGenerateContentFoldsSystemIntoPrompt(t *testing.T) {
	var got string
	g := newGenerator(func(_ context.Context, prompt string) (string, error) {
		got = prompt
		return "  answer \n", nil
	}, "openai", "gpt-4o-mini", nil)

	out, err := g.GenerateContent(context.Background(), "Be helpful.", "List resources")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, "Be helpful.\n\nList resources", got)
	assert.Equal(t, "openai/gpt-4o-mini", g.Model())
}

func TestGenerateContentErrors(t *testing.T) {
	boom := errors.New("rate limited")
	g := newGenerator(func(context.Context, string) (string, error) { return "", boom }, "anthropic", "claude", nil)

	_, err := g.GenerateContent(context.Background(), "", "prompt")
	require.ErrorIs(t, err, boom)

	_, err = g.GenerateContent(context.Background(), "", " ")
	require.Error(t, err)

	empty := newGenerator(func(context.Context, string) (string, error) { return "", nil }, "anthropic", "claude", nil)
	_, err = empty.GenerateContent(context.Background(), "", "prompt")
	require.ErrorContains(t, err, "empty response")
}
