// Package learning turns extracted skills and matched jobs into learning path recommendations.
package learning

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/ai"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
)

// SystemPrompt is sent as the system instruction of every request.
const SystemPrompt = "You are a helpful AI career guidance assistant."

const defaultMaxLogLength = 200

//go:embed prompt.md
var promptTemplate string

// ErrBadResponse is returned by Parse when the model output holds no usable paths.
var ErrBadResponse = errors.New("unusable learning path response")

// Path is one skill gap with the resources suggested for it.
type Path struct {
	SkillGap        string   `json:"skill_gap"`
	Recommendations []string `json:"recommendations"`
}

// Plan is the outcome of Planner.Plan. Degraded plans hold static fallback
// paths and Reason says why the generator was not used.
type Plan struct {
	Paths    []Path `json:"learning_paths"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"degraded_reason,omitempty"`
}

type Planner struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

// NewPlanner returns a Planner. A nil generator always yields degraded fallback plans.
func NewPlanner(generator ai.Generator, l *zap.Logger, maxLogLength int) *Planner {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	model := ""
	if generator != nil {
		model = generator.Model()
	}

	return &Planner{
		generator: generator,
		logger:    logger.WithBackend(l, "learning", model),
		maxLogLen: maxLogLength,
	}
}

// Plan asks the generator for learning paths. It never fails: any generator
// or parse problem produces a degraded plan built from Fallback.
func (p *Planner) Plan(ctx context.Context, skills, jobTitles []string) Plan {
	if p.generator == nil {
		return p.degrade(skills, jobTitles, ai.ErrNotConfigured)
	}

	prompt := BuildPrompt(skills, jobTitles)
	p.logger.Debug("learning path request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, p.maxLogLen)),
	)

	raw, err := p.generator.GenerateContent(ctx, SystemPrompt, prompt)
	if err != nil {
		return p.degrade(skills, jobTitles, err)
	}

	p.logger.Debug("learning path response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, p.maxLogLen)),
	)

	paths, err := Parse(raw)
	if err != nil {
		return p.degrade(skills, jobTitles, err)
	}

	return Plan{Paths: paths}
}

func (p *Planner) degrade(skills, jobTitles []string, cause error) Plan {
	p.logger.Warn("using fallback learning paths", zap.Error(cause))
	return Plan{
		Paths:    Fallback(skills, jobTitles),
		Degraded: true,
		Reason:   cause.Error(),
	}
}

// BuildPrompt fills the embedded template.
func BuildPrompt(skills, jobTitles []string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{SKILLS}}", joinOrNone(skills))
	return strings.ReplaceAll(prompt, "{{JOBS}}", joinOrNone(jobTitles))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// Fallback returns the static paths used when no model answer is available.
func Fallback(skills, jobTitles []string) []Path {
	var paths []Path
	if len(skills) > 0 {
		skill := skills[0]
		paths = append(paths, Path{
			SkillGap: "Advanced " + skill,
			Recommendations: []string{
				fmt.Sprintf("Deep Dive into %s (Udemy)", skill),
				fmt.Sprintf("Online %s Certification (Coursera)", skill),
			},
		})
	}
	if len(jobTitles) > 0 {
		paths = append(paths, Path{
			SkillGap:        "General Job Market Trends",
			Recommendations: []string{"LinkedIn Learning: Career Essentials", "Read Industry Blogs"},
		})
	}
	if len(paths) == 0 {
		paths = append(paths, Path{
			SkillGap:        "General Skill Improvement",
			Recommendations: []string{"Explore Coursera", "Browse freeCodeCamp tutorials"},
		})
	}
	return paths
}
