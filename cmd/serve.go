package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/api"
	"github.com/nity4jain/skillbridge-mvp/internal/catalog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis http api",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	serveCmd.Flags().Bool("watch", false, "reload the catalog when its file changes")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("catalog.watch", serveCmd.Flags().Lookup("watch"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()
	logger.Info("starting the "+app+" api", zap.String("version", version))

	svc, err := newServices(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing services", zap.Error(err))
	}

	startWatcher(ctx, config.Catalog, svc.source, svc.engine.Reload, logger)

	if err := api.New(config.Server, svc.analysis, svc.extractor, svc.engine, logger).Run(ctx); err != nil {
		logger.Fatal("serving api", zap.Error(err))
	}
	logger.Info("exiting", zap.String("reason", "shutdown complete"))
}

// startWatcher reloads the catalog on file changes when enabled. Only file
// sources can be watched.
func startWatcher(ctx context.Context, cfg *CatalogConfig, src catalog.Source, reload func(context.Context) error, logger *zap.Logger) {
	if !cfg.Watch {
		return
	}

	path, ok := watchPath(src)
	if !ok {
		logger.Warn("catalog watch requested for a non-file source", zap.String("source", src.Name()))
		return
	}

	go func() {
		if err := catalog.Watch(ctx, path, cfg.WatchDebounce, reload, logger); err != nil {
			logger.Error("catalog watcher stopped", zap.Error(err))
		}
	}()
}
