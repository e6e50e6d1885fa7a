package learning

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nity4jain/skillbridge-mvp/internal/ai"
)

type stubGenerator struct {
	out    string
	err    error
	system string
	prompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.system, s.prompt = system, prompt
	return s.out, s.err
}

func (s *stubGenerator) Model() string { return "stub" }

func TestPlanUsesGeneratorOutput(t *testing.T) {
	gen := &stubGenerator{out: "```json\n{\"learning_paths\":[{\"skill_gap\":\"Kubernetes\",\"recommendations\":[\"CKAD course\",\"Build a cluster\"]}]}\n```"}
	plan := NewPlanner(gen, nil, 0).Plan(context.Background(), []string{"Go", "Docker"}, []string{"Backend Developer"})

	assert.False(t, plan.Degraded)
	assert.Empty(t, plan.Reason)
	assert.Equal(t, []Path{{SkillGap: "Kubernetes", Recommendations: []string{"CKAD course", "Build a cluster"}}}, plan.Paths)

	assert.Equal(t, SystemPrompt, gen.system)
	assert.Contains(t, gen.prompt, "(Go, Docker)")
	assert.Contains(t, gen.prompt, "(Backend Developer)")
}

func TestPlanDegradesWithoutGenerator(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	plan := NewPlanner(nil, zap.New(core), 0).Plan(context.Background(), []string{"Python"}, []string{"Data Scientist"})

	require.True(t, plan.Degraded)
	assert.Contains(t, plan.Reason, ai.ErrNotConfigured.Error())
	require.Len(t, plan.Paths, 2)
	assert.Equal(t, "Advanced Python", plan.Paths[0].SkillGap)
	assert.Equal(t, []string{"Deep Dive into Python (Udemy)", "Online Python Certification (Coursera)"}, plan.Paths[0].Recommendations)
	assert.Equal(t, "General Job Market Trends", plan.Paths[1].SkillGap)
	assert.Equal(t, 1, logs.FilterMessage("using fallback learning paths").Len())
}

func TestPlanDegradesOnGeneratorFailure(t *testing.T) {
	plan := NewPlanner(&stubGenerator{err: errors.New("quota exceeded")}, nil, 0).Plan(context.Background(), nil, nil)

	require.True(t, plan.Degraded)
	assert.Equal(t, "quota exceeded", plan.Reason)
	assert.Equal(t, []Path{{SkillGap: "General Skill Improvement", Recommendations: []string{"Explore Coursera", "Browse freeCodeCamp tutorials"}}}, plan.Paths)
}

func TestPlanDegradesOnUnparsableOutput(t *testing.T) {
	plan := NewPlanner(&stubGenerator{out: "Sure! Here are some ideas."}, nil, 0).Plan(context.Background(), []string{"SQL"}, nil)

	require.True(t, plan.Degraded)
	assert.Contains(t, plan.Reason, ErrBadResponse.Error())
	require.Len(t, plan.Paths, 1)
	assert.Equal(t, "Advanced SQL", plan.Paths[0].SkillGap)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Path
		wantErr bool
	}{
		{
			name: "bare array",
			raw:  `[{"skill_gap":"AWS","recommendations":["Cloud Practitioner"]}]`,
			want: []Path{{SkillGap: "AWS", Recommendations: []string{"Cloud Practitioner"}}},
		},
		{
			name: "recommendations as text",
			raw:  `{"learning_paths":[{"skill_gap":" GraphQL ","recommendations":"- Apollo docs\n- How to GraphQL"}]}`,
			want: []Path{{SkillGap: "GraphQL", Recommendations: []string{"Apollo docs", "How to GraphQL"}}},
		},
		{
			name: "recommendation objects",
			raw:  `{"learning_paths":[{"skill_gap":"Docker","recommendations":[{"title":"Docker Deep Dive"},3]}]}`,
			want: []Path{{SkillGap: "Docker", Recommendations: []string{"Docker Deep Dive", "3"}}},
		},
		{
			name: "skips entries without gap",
			raw:  `{"learning_paths":[{"recommendations":["x"]},{"skill_gap":"Rust"}]}`,
			want: []Path{{SkillGap: "Rust", Recommendations: []string{}}},
		},
		{name: "missing key", raw: `{"paths":[]}`, wantErr: true},
		{name: "empty list", raw: `{"learning_paths":[]}`, wantErr: true},
		{name: "scalar", raw: `42`, wantErr: true},
		{name: "not json", raw: `nope`, wantErr: true},
		{name: "blank", raw: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPromptWithoutInputs(t *testing.T) {
	prompt := BuildPrompt(nil, nil)
	assert.Contains(t, prompt, "skills (none)")
	assert.Contains(t, prompt, "job roles (none)")
	assert.False(t, strings.Contains(prompt, "{{"))
}
