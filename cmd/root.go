package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "skillbridge"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skillbridge extracts skills from resumes, ranks matching jobs and suggests learning paths",
	}
)

// Root returns the root command for fang.Execute.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	envBindings := map[string]string{
		"worker.url":        "AMQP_URL",
		"server.addr":       "SKILLBRIDGE_ADDR",
		"matching.strategy": "SKILLBRIDGE_STRATEGY",
		"learning.provider": "SKILLBRIDGE_LEARNING_PROVIDER",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	// SKILLBRIDGE_MATCHING_TOP_K overrides matching.top-k and so on.
	viper.SetEnvPrefix(app)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillbridge.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("strategy", "", "matching strategy: tfidf or gemini")
	rootCmd.PersistentFlags().String("catalog", "", "catalog file (json or yaml) used instead of the configured source")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("matching.strategy", rootCmd.PersistentFlags().Lookup("strategy"))
	viper.BindPFlag("catalog.file", rootCmd.PersistentFlags().Lookup("catalog"))
}

func initConfig() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Every command runs with defaults when no config file exists.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}
