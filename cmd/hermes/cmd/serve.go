package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/hermes/internal/config"
	"github.com/msto63/hermes/internal/executor"
	"github.com/msto63/hermes/internal/gateway"
	"github.com/msto63/hermes/internal/generator"
	"github.com/msto63/hermes/internal/metrics"
	"github.com/msto63/hermes/internal/provider"
	"github.com/msto63/hermes/internal/resolver"
	"github.com/msto63/hermes/internal/safety"
	"github.com/msto63/hermes/internal/server"
	"github.com/msto63/hermes/pkg/core/health"
	"github.com/msto63/hermes/pkg/core/logging"
	"github.com/msto63/hermes/pkg/core/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Startet das Gateway",
	Long: `Startet das hermes Gateway.

Die Konfiguration wird aus der mit --config angegebenen Datei geladen,
sonst aus HERMES_CONFIG bzw. ./configs/config.toml.

Beispiele:
  hermes serve
  hermes serve --config /etc/hermes/config.toml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration, fail fast on anything incomplete
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		printError("Config konnte nicht geladen werden", err)
		return err
	}

	logger := logging.NewWithConfig(logging.LoggerConfig{
		ServiceName: cfg.General.Name,
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
	})

	// Wire the pipeline
	prov, err := provider.New(cfg.LLM)
	if err != nil {
		printError("LLM-Provider konnte nicht erstellt werden", err)
		return err
	}

	exec, err := executor.New(cfg.Execution, logger)
	if err != nil {
		printError("Execution-Strategie konnte nicht erstellt werden", err)
		return err
	}

	res := resolver.New(cfg.Services.Mapping)
	gen := generator.New(prov, safety.New(cfg.Services.Mapping), cfg.LLM, logger)
	sink := metrics.New()
	orch := gateway.New(res, gen, exec, sink, logger,
		cfg.Execution.CommandTimeout.Duration)

	registry := health.NewRegistry(cfg.General.Name, version.Gateway)
	registry.RegisterFunc("configuration", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{
			Name:    "configuration",
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("%d services mapped, strategy %s", res.Count(), exec.Name()),
		}
	})
	registry.RegisterFunc("llm", func(ctx context.Context) health.CheckResult {
		if err := prov.HealthCheck(ctx); err != nil {
			return health.CheckResult{
				Name:    "llm",
				Status:  health.StatusDegraded,
				Message: err.Error(),
			}
		}
		return health.CheckResult{
			Name:    "llm",
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("provider %s reachable", prov.Name()),
		}
	})

	srv := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		Version:      version.Gateway,
		CORS:         cfg.Server.CORS,
	}, orch, sink, registry)

	if err := srv.StartAsync(); err != nil {
		printError("Server konnte nicht gestartet werden", err)
		return err
	}

	logger.Info("hermes gateway started",
		"address", srv.Address(),
		"strategy", exec.Name(),
		"provider", prov.Name(),
		"services", res.Count())

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
