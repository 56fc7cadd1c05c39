package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tutorchat/metricsbox/internal/app"
	"github.com/tutorchat/metricsbox/internal/config"
	"github.com/tutorchat/metricsbox/internal/monitor"
	"github.com/tutorchat/metricsbox/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "metricsbox",
		Usage:   "Telemetry aggregator sidecar for the tutorchat services",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	debug := cmd.Bool("debug")

	// Configure logging level
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting metricsbox", "version", version.String(), "config", configPath)

	cfg, err := loadConfig(configPath, cmd.IsSet("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer application.Close()

	// Setup graceful shutdown
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start resource monitor
	if cfg.Monitor.Enabled {
		mon := monitor.New(cfg.Monitor.Interval, application.Aggregator, logger)
		if mon != nil {
			mon.Run(shutdownCtx)
			defer mon.Wait()
		}
	}

	// Start workload generator
	if application.Workload != nil {
		application.Workload.Run(shutdownCtx)
		defer application.Workload.Wait()
	}

	// Start exporters and ops server
	var wg sync.WaitGroup
	errChan := make(chan error, 3)

	if application.PrometheusExporter != nil {
		wg.Go(func() {
			if err := application.PrometheusExporter.Start(shutdownCtx); err != nil {
				errChan <- fmt.Errorf("prometheus exporter: %w", err)
			}
		})
	}

	if application.OTELExporter != nil {
		wg.Go(func() {
			if err := application.OTELExporter.Start(shutdownCtx); err != nil {
				errChan <- fmt.Errorf("otel exporter: %w", err)
			}
		})
	}

	if application.Server != nil {
		wg.Go(func() {
			if err := application.Server.Start(shutdownCtx); err != nil {
				errChan <- fmt.Errorf("ops server: %w", err)
			}
		})
	}

	// Wait for shutdown or error
	select {
	case err := <-errChan:
		slog.Error("component error", "error", err)
		stop()
	case <-shutdownCtx.Done():
		// Graceful shutdown triggered
	}

	// Give components a moment to finish their shutdown sequences.
	waitTimeout(&wg, 10*time.Second)

	slog.Info("shutdown complete")
	return nil
}

// loadConfig reads the configuration file; when the flag was left at
// its default and the file does not exist, built-in defaults apply.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file found, using defaults", "path", path)
		return config.Default(), nil
	}
	return cfg, err
}

// waitTimeout waits for the group up to d, so a stuck component cannot
// block process exit.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		slog.Warn("shutdown timed out waiting for components")
	}
}
