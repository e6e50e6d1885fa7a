package cmd

import (
	"time"

	"github.com/spf13/viper"

	"github.com/nity4jain/skillbridge-mvp/internal/api"
	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
	"github.com/nity4jain/skillbridge-mvp/internal/worker"
)

type Config struct {
	Catalog  *CatalogConfig  `mapstructure:"catalog"`
	Skills   *SkillsConfig   `mapstructure:"skills"`
	Matching *MatchingConfig `mapstructure:"matching"`
	Learning *LearningConfig `mapstructure:"learning"`
	Server   api.Config      `mapstructure:"server"`
	Worker   worker.Config   `mapstructure:"worker"`
}

type CatalogConfig struct {
	// Source is one of builtin, file or s3. A non-empty File implies file.
	Source        string         `mapstructure:"source"`
	File          string         `mapstructure:"file"`
	Watch         bool           `mapstructure:"watch"`
	WatchDebounce time.Duration  `mapstructure:"watch-debounce"`
	S3            *S3Config      `mapstructure:"s3"`
	SerpAPI       *SerpAPIConfig `mapstructure:"serpapi"`
	ExcludeFile   string         `mapstructure:"exclude-file"`
	Exclude       *ExcludeConfig `mapstructure:"exclude"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies"`
}

type S3Config struct {
	catalog.S3Config `mapstructure:",squash"`
	Bucket           string `mapstructure:"bucket"`
	Key              string `mapstructure:"key"`
}

type SerpAPIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Query      string `mapstructure:"query"`
	Location   string `mapstructure:"location"`
	MaxPages   int    `mapstructure:"max-pages"`
}

type SkillsConfig struct {
	VocabularyFile string `mapstructure:"vocabulary-file"`
	// Chunker is none or prose.
	Chunker        string `mapstructure:"chunker"`
	Overlap        string `mapstructure:"overlap"`
}

type MatchingConfig struct {
	Strategy  string        `mapstructure:"strategy"`
	TopK      int           `mapstructure:"top-k"`
	MinScore  float64       `mapstructure:"min-score"`
	CacheSize int           `mapstructure:"cache-size"`
	Gemini    *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

type LearningConfig struct {
	// Provider is none, gemini, openai, anthropic or openrouter.
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	BaseURL      string `mapstructure:"base-url"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

func setDefaults() {
	viper.SetDefault("catalog.source", "builtin")
	viper.SetDefault("catalog.watch-debounce", "500ms")
	viper.SetDefault("skills.chunker", "none")
	viper.SetDefault("skills.overlap", "keep-all")
	viper.SetDefault("matching.strategy", "tfidf")
	viper.SetDefault("matching.top-k", 5)
	viper.SetDefault("matching.cache-size", 1024)
	viper.SetDefault("learning.provider", "none")
	viper.SetDefault("learning.max-retries", 3)
	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("worker.queue", "skillbridge.analyze")
	viper.SetDefault("worker.workers", 3)
	viper.SetDefault("worker.prefetch", 1)
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.Catalog == nil {
		config.Catalog = &CatalogConfig{}
	}
	if config.Skills == nil {
		config.Skills = &SkillsConfig{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}
	if config.Learning == nil {
		config.Learning = &LearningConfig{}
	}
	return config, nil
}
