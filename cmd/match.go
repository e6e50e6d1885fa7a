package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/analysis"
)

var matchCmd = &cobra.Command{
	Use:   "match [text...]",
	Short: "Rank catalog jobs against profile text or a resume file",
	Run: func(cmd *cobra.Command, args []string) {
		match(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	addInputFlags(matchCmd)
	matchCmd.Flags().IntP("top-k", "k", 0, "number of jobs to return (default from config)")
}

func match(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	logger, config := setup()

	text, _, err := readProfile(cmd, args)
	if err != nil {
		logger.Fatal("reading profile", zap.Error(err))
	}

	engine, _, err := newEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building matching engine", zap.Error(err))
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	if topK <= 0 {
		topK = config.Matching.TopK
	}

	results, err := engine.Rank(ctx, text, topK)
	if err != nil {
		logger.Fatal("ranking jobs", zap.Error(err))
	}

	if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
		if err := printJSON(cmd, map[string]any{"top_matches": results}); err != nil {
			logger.Fatal("printing result", zap.Error(err))
		}
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tTITLE\tCOMPANY")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\n", analysis.RoundScore(r.Score), r.Job.ID, r.Job.Title, r.Job.Company)
	}
	w.Flush()
}
