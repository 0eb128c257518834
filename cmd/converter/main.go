package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bovespacli/internal/config"
	"bovespacli/internal/infrastructure"
	"bovespacli/internal/operations"
	"bovespacli/pkg/contracts"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("converter", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML configuration file (defaults to config.yaml lookup)")
	steps := fs.String("steps", "", "comma separated steps to run with their dependencies (default: all)")
	runID := fs.String("id", "", "run id (default: generated)")
	detectRenames := fs.Bool("detect-renames", false, "also write rename candidates found in the daily store")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		return exitConfig
	}
	if *detectRenames {
		cfg.Pipeline.DetectRenames = true
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting conversion",
		slog.String("version", contracts.Version),
		slog.String("security_type", cfg.Pipeline.SecurityType),
		slog.String("input_data_type", cfg.Pipeline.InputDataType),
		slog.String("output_resolution", cfg.Pipeline.OutputResolution))

	providers, err := infrastructure.InitializeOTel(cfg.Metrics, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		return exitConfig
	}
	defer func() {
		if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		logger.Warn("Pipeline metrics unavailable", slog.String("error", err.Error()))
		metrics = infrastructure.NoopPipelineMetrics()
	}

	env, err := operations.NewEnv(cfg, logger)
	if err != nil {
		logger.Error("Failed to prepare run", slog.String("error", err.Error()))
		return exitConfig
	}
	env.Metrics = metrics

	registry := operations.NewRegistry()
	if err := operations.RegisterDefaultSteps(registry, env); err != nil {
		logger.Error("Failed to register steps", slog.String("error", err.Error()))
		return exitFailed
	}

	requested := parseSteps(*steps)
	for _, id := range requested {
		if !registry.Has(id) {
			fmt.Fprintf(stdout, "unknown step %q, available steps: %s\n", id, strings.Join(registry.ListIDs(), ", "))
			return exitConfig
		}
	}

	manager := operations.NewManager(registry, operations.FromPipeline(cfg.Pipeline),
		operations.NewOperationTracer(providers, metrics), env.ErrLog, logger)
	manager.SetManifestPath(env.Paths.ManifestFile)

	resp, err := manager.Execute(ctx, operations.OperationRequest{ID: *runID, Steps: requested})
	if err != nil {
		logger.Error("Conversion aborted", slog.String("error", err.Error()))
		if operations.IsFatal(err) {
			return exitConfig
		}
		return exitFailed
	}

	fmt.Fprintf(stdout, "run %s %s in %s, %d errors logged to %s\n",
		resp.ID, resp.Status, resp.Duration.Round(time.Millisecond), resp.ErrorCount, env.Paths.ErrorLogFile)

	if resp.Status != operations.OperationStatusCompleted {
		return exitFailed
	}
	return exitOK
}

// parseSteps splits the -steps flag. Empty means every registered step.
func parseSteps(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
