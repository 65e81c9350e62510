package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/lookout/pkg/api"
	"github.com/cuemby/lookout/pkg/automation"
	"github.com/cuemby/lookout/pkg/collector"
	"github.com/cuemby/lookout/pkg/config"
	"github.com/cuemby/lookout/pkg/dispatch"
	"github.com/cuemby/lookout/pkg/gateway"
	"github.com/cuemby/lookout/pkg/health"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/scanner"
	"github.com/cuemby/lookout/pkg/storage"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lookout",
	Short: "Lookout - Real-time observability and control-plane gateway",
	Long: `Lookout collects telemetry on a schedule, fans it out to websocket
subscribers by topic, manages the alert lifecycle, and dispatches
deployment and scaling commands to automation endpoints.

A single binary: persistence is an embedded database, no external
broker or coordinator is needed.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Lookout version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway",
	Long: `Run the gateway: start the scheduled jobs, open the embedded
database, and serve the websocket and HTTP endpoints until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log.Init(log.Config{
			Level:      log.Level(cfg.Log.Level),
			JSONOutput: cfg.Log.JSON,
		})
		logger := log.WithComponent("main")
		logger.Info().
			Str("version", Version).
			Str("listen_addr", cfg.ListenAddr).
			Msg("starting lookout")

		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		store, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		gw := gateway.New(buildOptions(cfg, store))
		gw.Start()

		server := api.NewServer(gw, cfg.AuthTokens)
		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		logger.Info().Str("addr", cfg.ListenAddr).Msg("api server listening")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
		case err := <-errCh:
			logger.Error().Err(err).Msg("api server failed")
		}

		// Stop accepting connections first, then drain the gateway
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("api server shutdown failed")
		}
		gw.Shutdown()

		logger.Info().Msg("shutdown complete")
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(configPath)
}

// buildOptions wires the default collaborators from configuration.
// Collaborators without configuration stay nil and their jobs are
// disabled by the gateway.
func buildOptions(cfg *config.Config, store storage.Store) gateway.Options {
	sysCollector := collector.NewSystemCollector(cfg.Services)
	detector := collector.NewThresholdDetector(sysCollector.Last, collector.DefaultThresholds())
	analyzer := collector.NewPerformanceAnalyzer(store.Recent, 0)

	var checkers []health.Checker
	for _, dep := range cfg.Dependencies {
		switch dep.Type {
		case "tcp":
			checkers = append(checkers, health.NewTCPChecker(dep.Name, dep.Address, dep.Required, dep.Timeout))
		default:
			checkers = append(checkers, health.NewHTTPChecker(dep.Name, dep.Address, dep.Required, dep.Timeout))
		}
	}
	aggregator := health.NewAggregator(checkers, sysCollector, sysCollector.Snapshot)

	var deploy, scale dispatch.Automation
	if cfg.Automation.DeployURL != "" {
		deploy = automation.NewWebhookAutomation(cfg.Automation.DeployURL, cfg.Automation.Timeout)
	}
	if cfg.Automation.ScaleURL != "" {
		scale = automation.NewWebhookAutomation(cfg.Automation.ScaleURL, cfg.Automation.Timeout)
	}

	var logs gateway.LogAggregator
	if cfg.LogDir != "" {
		logs = collector.NewFileLogSummarizer(cfg.LogDir, cfg.Jobs.LogSummary)
	}

	return gateway.Options{
		Config:     cfg,
		Store:      store,
		Aggregator: aggregator,
		Collector:  sysCollector,
		Detector:   detector,
		Analyzer:   analyzer,
		Scanner:    scanner.NewConfigScanner(cfg),
		Logs:       logs,
		Deploy:     deploy,
		Scale:      scale,
	}
}
