package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "Extract canonical skills from profile text or a resume file",
	Run: func(cmd *cobra.Command, args []string) {
		extract(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addInputFlags(extractCmd)
}

func extract(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	logger, config := setup()

	text, _, err := readProfile(cmd, args)
	if err != nil {
		logger.Fatal("reading profile", zap.Error(err))
	}

	extractor, err := newExtractor(config.Skills, logger)
	if err != nil {
		logger.Fatal("building skill extractor", zap.Error(err))
	}

	found, err := extractor.Extract(ctx, text)
	if err != nil {
		logger.Fatal("extracting skills", zap.Error(err))
	}

	if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
		if err := printJSON(cmd, map[string]any{"extracted_skills": found}); err != nil {
			logger.Fatal("printing result", zap.Error(err))
		}
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(found, "\n"))
}
