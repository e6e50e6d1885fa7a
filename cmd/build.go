package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/ai"
	"github.com/nity4jain/skillbridge-mvp/internal/ai/fantasy"
	aigemini "github.com/nity4jain/skillbridge-mvp/internal/ai/gemini"
	"github.com/nity4jain/skillbridge-mvp/internal/analysis"
	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
	"github.com/nity4jain/skillbridge-mvp/internal/embedding"
	embedgemini "github.com/nity4jain/skillbridge-mvp/internal/embedding/gemini"
	"github.com/nity4jain/skillbridge-mvp/internal/embedding/tfidf"
	"github.com/nity4jain/skillbridge-mvp/internal/filtering"
	"github.com/nity4jain/skillbridge-mvp/internal/learning"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
	"github.com/nity4jain/skillbridge-mvp/internal/matching"
	"github.com/nity4jain/skillbridge-mvp/internal/secrets"
	"github.com/nity4jain/skillbridge-mvp/internal/skills"
)

// setup creates the logger and reads the config. Both are required by every command.
func setup() (*zap.Logger, *Config) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	l.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return l, config
}

// redacted returns a copy of config safe for logging.
func redacted(config *Config) Config {
	c := *config
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}

	learningCfg := *c.Learning
	learningCfg.APIKey = mask(learningCfg.APIKey)
	c.Learning = &learningCfg

	matchingCfg := *c.Matching
	if matchingCfg.Gemini != nil {
		g := *matchingCfg.Gemini
		g.APIKey = mask(g.APIKey)
		matchingCfg.Gemini = &g
	}
	c.Matching = &matchingCfg

	catalogCfg := *c.Catalog
	if catalogCfg.S3 != nil {
		s := *catalogCfg.S3
		s.SecretKey = mask(s.SecretKey)
		catalogCfg.S3 = &s
	}
	if catalogCfg.SerpAPI != nil {
		s := *catalogCfg.SerpAPI
		s.APIKey = mask(s.APIKey)
		catalogCfg.SerpAPI = &s
	}
	c.Catalog = &catalogCfg

	c.Worker.URL = mask(c.Worker.URL)
	return c
}

func newExtractor(cfg *SkillsConfig, l *zap.Logger) (*skills.Extractor, error) {
	vocab := skills.DefaultVocabulary()
	if path := strings.TrimSpace(cfg.VocabularyFile); path != "" {
		loaded, err := skills.LoadVocabularyFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading vocabulary: %w", err)
		}
		vocab = loaded
	}

	policy, err := skills.ParseOverlapPolicy(cfg.Overlap)
	if err != nil {
		return nil, err
	}

	var chunker skills.Chunker
	switch strings.ToLower(strings.TrimSpace(cfg.Chunker)) {
	case "", "none":
	case "prose":
		prose, err := skills.NewProseChunker()
		if err != nil {
			return nil, err
		}
		chunker = prose
	default:
		return nil, fmt.Errorf("unsupported chunker: %s", cfg.Chunker)
	}

	return skills.NewExtractor(vocab, chunker, policy, l), nil
}

func newStrategy(ctx context.Context, cfg *MatchingConfig, l *zap.Logger) (matching.Strategy, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Strategy))
	switch name {
	case "", "tfidf":
		return matching.Strategy{Name: "tfidf", Embedder: tfidf.New()}, nil
	case "gemini", "embedding":
		g := cfg.Gemini
		if g == nil {
			g = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: g.APIKey,
			File:  g.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return matching.Strategy{}, fmt.Errorf("%w: %w", embedding.ErrBackendUnavailable, err)
		}

		embedder, err := embedgemini.New(ctx, apiKey, g.Model, g.Dimensions, l)
		if err != nil {
			return matching.Strategy{}, err
		}

		return matching.Strategy{Name: "gemini", Embedder: embedding.NewCached(embedder, cfg.CacheSize)}, nil
	default:
		return matching.Strategy{}, fmt.Errorf("unsupported matching strategy: %s", cfg.Strategy)
	}
}

// newGenerator returns nil without error when learning paths are disabled.
func newGenerator(ctx context.Context, cfg *LearningConfig, l *zap.Logger) (ai.Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == "none" {
		return nil, nil
	}

	envs := map[string]string{
		"gemini":     "GEMINI_API_KEY",
		"openai":     "OPENAI_API_KEY",
		"anthropic":  "ANTHROPIC_API_KEY",
		"openrouter": "OPENROUTER_API_KEY",
	}
	env, ok := envs[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported learning provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   env,
	})
	if err != nil {
		return nil, err
	}

	if provider == "gemini" {
		g, err := aigemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, l)
		if err != nil {
			return nil, err
		}
		return g, nil
	}

	g, err := fantasy.New(ctx, fantasy.Config{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
	}, l)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func newPlanner(ctx context.Context, cfg *LearningConfig, l *zap.Logger) *learning.Planner {
	generator, err := newGenerator(ctx, cfg, l)
	if err != nil {
		l.Warn("learning paths fall back to static suggestions", zap.Error(err))
	}
	return learning.NewPlanner(generator, l, cfg.MaxLogLength)
}

func newSource(ctx context.Context, cfg *CatalogConfig) (catalog.Source, error) {
	source := strings.ToLower(strings.TrimSpace(cfg.Source))
	if cfg.File != "" {
		source = "file"
	}

	switch source {
	case "", "builtin":
		return catalog.BuiltinSource{}, nil
	case "file":
		if cfg.File == "" {
			return nil, fmt.Errorf("catalog.file is required for the file source")
		}
		return catalog.FileSource{Path: cfg.File}, nil
	case "s3":
		if cfg.S3 == nil || cfg.S3.Bucket == "" || cfg.S3.Key == "" {
			return nil, fmt.Errorf("catalog.s3.bucket and catalog.s3.key are required for the s3 source")
		}
		client, err := catalog.NewS3Client(ctx, cfg.S3.S3Config)
		if err != nil {
			return nil, err
		}
		return catalog.S3Source{Client: client, Bucket: cfg.S3.Bucket, Key: cfg.S3.Key}, nil
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", cfg.Source)
	}
}

func newFilters(cfg *CatalogConfig, l *zap.Logger) []filtering.Filter {
	var companies []string
	if cfg.Exclude != nil {
		companies = cfg.Exclude.Companies
	}

	return []filtering.Filter{
		filtering.NewDuplicates(l),
		filtering.NewExcludeFile(cfg.ExcludeFile, l),
		filtering.NewCompanies(companies, l),
	}
}

// newEngine builds the matching engine and installs the first index.
func newEngine(ctx context.Context, config *Config, l *zap.Logger) (*matching.Engine, catalog.Source, error) {
	l = logger.OrNop(l)

	strategy, err := newStrategy(ctx, config.Matching, l)
	if err != nil {
		return nil, nil, err
	}

	src, err := newSource(ctx, config.Catalog)
	if err != nil {
		return nil, nil, err
	}

	filters := newFilters(config.Catalog, l)
	for _, status := range filtering.Describe(filters) {
		l.Debug("filter configured", zap.String("name", status.Name), zap.Any("details", status.Details))
	}

	engine := matching.NewEngine(strategy, filtering.Loader(src, filters, l), l)
	if err := engine.Reload(ctx); err != nil {
		return nil, nil, err
	}
	return engine, src, nil
}

type services struct {
	extractor *skills.Extractor
	engine    *matching.Engine
	source    catalog.Source
	analysis  *analysis.Service
}

func newServices(ctx context.Context, config *Config, l *zap.Logger) (*services, error) {
	l = logger.OrNop(l)

	extractor, err := newExtractor(config.Skills, l)
	if err != nil {
		return nil, fmt.Errorf("building skill extractor: %w", err)
	}

	engine, src, err := newEngine(ctx, config, l)
	if err != nil {
		return nil, fmt.Errorf("building matching engine: %w", err)
	}

	planner := newPlanner(ctx, config.Learning, l)

	svc := analysis.NewService(extractor, engine, planner, analysis.Options{
		TopK:     config.Matching.TopK,
		MinScore: config.Matching.MinScore,
	}, l)

	return &services{extractor: extractor, engine: engine, source: src, analysis: svc}, nil
}

// watchPath returns the local catalog file to watch, if any.
func watchPath(src catalog.Source) (string, bool) {
	fs, ok := src.(catalog.FileSource)
	if !ok {
		return "", false
	}
	abs, err := filepath.Abs(fs.Path)
	if err != nil {
		return fs.Path, true
	}
	return abs, true
}
