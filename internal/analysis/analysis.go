// Package analysis combines skill extraction, job ranking and learning paths into one report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/document"
	"github.com/nity4jain/skillbridge-mvp/internal/learning"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
	"github.com/nity4jain/skillbridge-mvp/internal/matching"
)

const previewLength = 500

// ErrEmptyContent is returned when there is no text to analyze.
var ErrEmptyContent = errors.New("content must not be empty")

type SkillExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

type Ranker interface {
	Rank(ctx context.Context, query string, topK int) ([]matching.Result, error)
}

type Planner interface {
	Plan(ctx context.Context, skills, jobTitles []string) learning.Plan
}

// MatchedJob is a ranked job as shown in a report.
type MatchedJob struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

type Report struct {
	ID              uuid.UUID       `json:"id"`
	Filename        string          `json:"filename,omitempty"`
	ContentPreview  string          `json:"content_preview,omitempty"`
	ExtractedSkills []string        `json:"extracted_skills"`
	MatchedJobs     []MatchedJob    `json:"matched_jobs"`
	LearningPaths   []learning.Path `json:"learning_paths"`
	Degraded        bool            `json:"degraded"`
	DegradedReason  string          `json:"degraded_reason,omitempty"`
}

type Options struct {
	TopK     int
	MinScore float64
}

type Service struct {
	extractor SkillExtractor
	ranker    Ranker
	planner   Planner
	opts      Options
	logger    *zap.Logger
}

func NewService(extractor SkillExtractor, ranker Ranker, planner Planner, opts Options, l *zap.Logger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = matching.DefaultTopK
	}
	return &Service{
		extractor: extractor,
		ranker:    ranker,
		planner:   planner,
		opts:      opts,
		logger:    logger.OrNop(l),
	}
}

// AnalyzeText builds a report for free-form profile text.
func (s *Service) AnalyzeText(ctx context.Context, content string) (*Report, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return s.analyze(ctx, content)
}

// AnalyzeDocument extracts text from an uploaded resume and analyzes it.
// The report carries the filename and a preview of the extracted text.
func (s *Service) AnalyzeDocument(ctx context.Context, filename string, data []byte) (*Report, error) {
	content, err := document.ExtractText(filename, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyContent)
	}

	report, err := s.analyze(ctx, content)
	if err != nil {
		return nil, err
	}
	report.Filename = filename
	report.ContentPreview = Preview(content)
	return report, nil
}

func (s *Service) analyze(ctx context.Context, content string) (*Report, error) {
	started := time.Now()

	skills, err := s.extractor.Extract(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("extracting skills: %w", err)
	}

	results, err := s.ranker.Rank(ctx, content, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("ranking jobs: %w", err)
	}

	matched := make([]MatchedJob, 0, len(results))
	titles := make([]string, 0, len(results))
	for _, r := range results {
		if s.opts.MinScore > 0 && r.Score < s.opts.MinScore {
			continue
		}
		matched = append(matched, MatchedJob{ID: r.Job.ID, Title: r.Job.Title, Score: RoundScore(r.Score)})
		titles = append(titles, r.Job.Title)
	}

	plan := s.planner.Plan(ctx, skills, titles)

	report := &Report{
		ID:              uuid.New(),
		ExtractedSkills: skills,
		MatchedJobs:     matched,
		LearningPaths:   plan.Paths,
		Degraded:        plan.Degraded,
		DegradedReason:  plan.Reason,
	}

	s.logger.Info("profile analyzed",
		zap.String("report_id", report.ID.String()),
		zap.Int("skills", len(skills)),
		zap.Int("matches", len(matched)),
		zap.Bool("degraded", plan.Degraded),
		zap.Duration("took", time.Since(started)),
	)

	return report, nil
}

// RoundScore rounds to four decimal places.
func RoundScore(score float64) float64 {
	return math.Round(score*1e4) / 1e4
}

// Preview returns the first 500 runes of content followed by "...".
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}
