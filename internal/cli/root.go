// Package cli wires the demo-shop commands: the root command runs the HTTP
// service, fire drives a scenario against a running instance.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"demo-shop/internal/config"
	"demo-shop/internal/handlers"
	"demo-shop/internal/observability"
	"demo-shop/internal/routers"
	"demo-shop/internal/scenario"
	"demo-shop/internal/shop"
)

var rootCmd = &cobra.Command{
	Use:   "demoshop",
	Short: "Synthetic e-commerce service that generates realistic telemetry",
	Long: `demoshop runs a simulated storefront whose endpoints respond with
configured latency distributions and deliberate failure rates, plus
scenario endpoints that fire bursts of traffic at the storefront to
produce recognizable error and latency patterns.

Run without arguments to start the service. Use the fire subcommand to
trigger a scenario against a running instance.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogger(cfg.LogLevel)

	shutdown, err := observability.SetupOTel(cmd.Context(), observability.Config{
		Endpoint:      cfg.OtelEndpoint,
		ServiceName:   cfg.ServiceName,
		Environment:   cfg.Environment,
		Release:       cfg.Release,
		DisableTraces: cfg.DisableTraces,
	})
	if err != nil {
		return fmt.Errorf("otel init: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	m, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics init: %w", err)
	}

	// The simulated storefront and the driver that loops traffic back to it.
	s := shop.New(shop.DefaultConfig())
	drv := scenario.New(scenario.Config{
		BaseURL: cfg.ScenarioBaseURL,
		Timeout: time.Duration(cfg.ScenarioTimeoutMs) * time.Millisecond,
	})

	h := handlers.New(s, drv, m)
	r := routers.NewRouter(m, h)

	slog.Info("listening", "port", cfg.Port, "environment", cfg.Environment, "release", cfg.Release)
	return r.Run(":" + cfg.Port)
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: "15:04:05",
		}),
	))
}
