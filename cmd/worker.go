package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis requests from an amqp queue",
	Run: func(_ *cobra.Command, _ []string) {
		work()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func work() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()
	if config.Worker.URL == "" {
		logger.Fatal("worker.url is required", zap.String("hint", "set AMQP_URL or worker.url in the configuration file"))
	}

	svc, err := newServices(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing services", zap.Error(err))
	}

	startWatcher(ctx, config.Catalog, svc.source, svc.engine.Reload, logger)

	if err := worker.NewPool(config.Worker, svc.analysis, logger).Run(ctx); err != nil {
		logger.Fatal("running workers", zap.Error(err))
	}
}
