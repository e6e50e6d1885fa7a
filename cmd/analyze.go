package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/analysis"
	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
	"github.com/nity4jain/skillbridge-mvp/internal/filtering"
	"github.com/nity4jain/skillbridge-mvp/internal/matching"
)

const (
	PromptJobDetails          = "Show matched job details"
	PromptLearningPaths       = "Show learning paths"
	PromptAppendToExcludeFile = "Append matched jobs to exclude file"
	PromptReportToFile        = "Dump report to file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Extract skills, rank jobs and suggest learning paths for a profile",
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addInputFlags(analyzeCmd)

	analyzeCmd.Flags().BoolP("yes", "y", false, "print the report and exit without prompting")
	analyzeCmd.Flags().StringP("exclude-file", "e", "", "file with jobs to exclude from matching")

	viper.BindPFlag("catalog.exclude-file", analyzeCmd.Flags().Lookup("exclude-file"))
}

func analyze(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	logger, config := setup()

	svc, err := newServices(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing services", zap.Error(err))
	}

	report, err := analyzeInput(ctx, cmd, args, svc.analysis)
	if err != nil {
		logger.Fatal("analyzing profile", zap.Error(err))
	}

	asJSON, _ := cmd.Flags().GetBool("output-json")
	if asJSON {
		if err := printJSON(cmd, report); err != nil {
			logger.Fatal("printing report", zap.Error(err))
		}
		return
	}

	logger.Info("extracted skills", zap.Strings("skills", report.ExtractedSkills))
	for _, m := range report.MatchedJobs {
		logger.Info("matched job", zap.String("job_id", m.ID), zap.String("title", m.Title), zap.Float64("score", m.Score))
	}
	if report.Degraded {
		logger.Warn("learning paths are static suggestions", zap.String("reason", report.DegradedReason))
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes || viper.GetBool("json") {
		return
	}

	if len(report.MatchedJobs) == 0 {
		logger.Info("exiting", zap.String("reason", "no matching jobs"))
		return
	}

	for {
		prompt := promptui.Select{
			Label: "What next?",
			Items: menuItems(config.Catalog.ExcludeFile),
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, svc.engine, report); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// analyzeInput runs a document through AnalyzeDocument so the report carries
// the filename and preview. Anything else goes through AnalyzeText.
func analyzeInput(ctx context.Context, cmd *cobra.Command, args []string, svc *analysis.Service) (*analysis.Report, error) {
	path, _ := cmd.Flags().GetString("file")
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return svc.AnalyzeDocument(ctx, filepath.Base(path), data)
	}

	text, _, err := readProfile(cmd, args)
	if err != nil {
		return nil, err
	}
	return svc.AnalyzeText(ctx, text)
}

func menuItems(excludeFile string) []string {
	items := []string{PromptJobDetails, PromptLearningPaths}
	if excludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	return append(items, PromptReportToFile, PromptExit)
}

func handleAction(action string, logger *zap.Logger, config *Config, engine *matching.Engine, report *analysis.Report) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptJobDetails:
		return jobDetails(logger, engine, report)
	case PromptLearningPaths:
		pretty, _ := json.MarshalIndent(report.LearningPaths, "", "  ")
		logger.Info(string(pretty), zap.Int("paths count", len(report.LearningPaths)))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.Catalog.ExcludeFile, engine, report)
	case PromptReportToFile:
		filename, err := dumpReport(report)
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func jobDetails(logger *zap.Logger, engine *matching.Engine, report *analysis.Report) error {
	items := make([]string, 0, len(report.MatchedJobs)+1)
	for _, m := range report.MatchedJobs {
		items = append(items, fmt.Sprintf("%s %s / %.4f", m.ID, m.Title, m.Score))
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: append(items, PromptBack),
	}

	for {
		_, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		id := strings.Split(selected, " ")[0]
		job, ok := lookupJob(engine, id)
		if !ok {
			return fmt.Errorf("there is no such job id %s", id)
		}

		pretty, _ := json.MarshalIndent(job, "", "  ")
		logger.Info(string(pretty), zap.String("job_id", id))
	}
}

func lookupJob(engine *matching.Engine, id string) (catalog.Job, bool) {
	ix := engine.Current()
	if ix == nil {
		return catalog.Job{}, false
	}
	return ix.Catalog().Get(id)
}

func appendToExcludeFile(logger *zap.Logger, path string, engine *matching.Engine, report *analysis.Report) error {
	excluded, err := filtering.LoadExcluded(path)
	if err != nil {
		return err
	}

	jobs := make([]catalog.Job, 0, len(report.MatchedJobs))
	for _, m := range report.MatchedJobs {
		if job, ok := lookupJob(engine, m.ID); ok {
			jobs = append(jobs, job)
		}
	}
	excluded.Append(filtering.ExcludeJobs(jobs))

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", len(jobs)))
	return nil
}

func dumpReport(report *analysis.Report) (string, error) {
	f, err := os.CreateTemp("", app+"-report-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", err
	}
	return f.Name(), nil
}
