package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
	"github.com/nity4jain/skillbridge-mvp/internal/filtering"
	"github.com/nity4jain/skillbridge-mvp/internal/secrets"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch-jobs",
	Short: "Fetch postings from SerpAPI Google Jobs into a catalog file",
	Run: func(cmd *cobra.Command, _ []string) {
		fetch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringP("output", "o", "jobs.json", "catalog file to write (json or yaml)")
	fetchCmd.Flags().StringP("query", "q", "", "search query (default from config)")
}

func fetch(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	cfg := config.Catalog.SerpAPI
	if cfg == nil {
		cfg = &SerpAPIConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "serpapi api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "SERPAPI_API_KEY",
	})
	if err != nil {
		logger.Fatal("loading serpapi api key", zap.Error(err),
			zap.String("hint", "set SERPAPI_API_KEY or catalog.serpapi.api-key-file"))
	}

	query := cfg.Query
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		query = q
	}

	src := catalog.NewSerpAPISource(apiKey, query, logger)
	if cfg.Location != "" {
		src.Location = cfg.Location
	}
	if cfg.MaxPages > 0 {
		src.MaxPages = cfg.MaxPages
	}

	logger.Info("starting the search", zap.String("search", src.Query))

	jobs, err := src.Load(ctx)
	if err != nil {
		logger.Fatal("fetching jobs", zap.Error(err))
	}

	jobs, err = filtering.Run(ctx, []filtering.Filter{filtering.NewDuplicates(logger)}, jobs, logger)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if len(jobs) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs found"))
		return
	}

	output, _ := cmd.Flags().GetString("output")
	if err := catalog.Write(output, jobs); err != nil {
		logger.Fatal("writing catalog", zap.Error(err))
	}

	logger.Info("catalog written", zap.String("filename", output), zap.Int("count", len(jobs)))
}
