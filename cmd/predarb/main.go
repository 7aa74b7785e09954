// Package main is the entry point for the prediction-market arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/prediction-arb/business/arbitrage"
	arbitrageDI "github.com/fd1az/prediction-arb/business/arbitrage/di"
	"github.com/fd1az/prediction-arb/business/ingest"
	"github.com/fd1az/prediction-arb/business/matching"
	"github.com/fd1az/prediction-arb/internal/apm"
	"github.com/fd1az/prediction-arb/internal/config"
	"github.com/fd1az/prediction-arb/internal/health"
	"github.com/fd1az/prediction-arb/internal/logger"
	"github.com/fd1az/prediction-arb/internal/metrics"
	"github.com/fd1az/prediction-arb/internal/monolith"
	"github.com/fd1az/prediction-arb/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type options struct {
	configPath string
	tuiMode    bool
	once       bool
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	once := flag.Bool("once", false, "Run a single detection cycle, print it and exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("predarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging and scripting
	opts := options{
		configPath: *configPath,
		tuiMode:    !*cliMode && !*once,
		once:       *once,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !opts.tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules pick the right reporter
	cfg.Arbitrage.TUIMode = opts.tuiMode

	logLevel := logger.ParseLevel(cfg.App.LogLevel)

	var log *logger.Logger
	if opts.tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting prediction-market arbitrage scanner",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	if cfg.Telemetry.Enabled {
		stop, err := startTelemetry(ctx, cfg.Telemetry, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	mono := monolith.New(cfg, log)

	// Define modules in dependency order
	modules := []monolith.Module{
		&ingest.Module{},    // provides the record source
		&matching.Module{},  // provides the identity matcher
		&arbitrage.Module{}, // depends on ingest and matching
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if opts.once {
		return runOnce(ctx, mono)
	}

	healthServer := health.NewServer(cfg.Health.Port, version, log)
	healthServer.RegisterCheck("detector", func(ctx context.Context) error {
		return arbitrageDI.GetDetector(mono.Services()).Check(ctx)
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Health.Port)
	}
	defer shutdown(healthServer.Stop)

	if opts.tuiMode {
		startFunc := func() error {
			ui.Send(ui.StartupMsg{Step: "config", Status: "connected"})
			ui.Send(ui.StartupMsg{Step: "source", Status: "connecting", Message: cfg.Ingest.Source})
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			return nil
		}
		stopFunc := func() {
			shutdown(mono.Close)
		}
		return runTUI(ctx, startFunc, stopFunc)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	return runCLI(ctx, mono, log)
}

func startTelemetry(ctx context.Context, cfg config.TelemetryConfig, log *logger.Logger) (func(), error) {
	traceProvider, err := apm.NewTraceProvider(log,
		apm.WithProvider(apm.Provider(cfg.TraceExporter), cfg.OTLPEndpoint, apm.ParseHeaders(cfg.OTLPHeaders), log),
		apm.WithServiceName(cfg.ServiceName),
		apm.WithSampleRate(cfg.SampleRate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	metricOpts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.ServiceName),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	}
	if cfg.OTLPMetricsEndpoint != "" {
		metricOpts = append(metricOpts, metrics.WithProviderConfig(
			metrics.NewOtelCollectorConfig(cfg.OTLPMetricsEndpoint, apm.ParseHeaders(cfg.OTLPHeaders), cfg.OTLPInsecure),
		))
	}

	meterProvider, err := metrics.NewMetricProvider(metricOpts...)
	if err != nil {
		traceProvider.Stop()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	metricsServer := metrics.NewServer(cfg.PrometheusPort, log)
	if err := metricsServer.Start(); err != nil {
		log.Warn(ctx, "failed to start metrics server", "error", err)
	}

	return func() {
		shutdown(metricsServer.Stop)
		shutdown(meterProvider.Shutdown)
		if err := traceProvider.Stop(); err != nil {
			log.Warn(context.Background(), "stopping trace provider", "error", err)
		}
	}, nil
}

// runOnce resolves the detector without starting the polling loop and runs
// a single cycle through the console reporter.
func runOnce(ctx context.Context, mono monolith.Monolith) error {
	detector := arbitrageDI.GetDetector(mono.Services())
	if _, err := detector.RunCycle(ctx); err != nil {
		return fmt.Errorf("detection cycle failed: %w", err)
	}
	return nil
}

func runCLI(ctx context.Context, mono interface{ Close(context.Context) error }, log *logger.Logger) error {
	log.Info(ctx, "all modules started, beginning arbitrage detection")

	<-ctx.Done()

	log.Info(context.Background(), "shutting down")

	shutdown(mono.Close)
	return nil
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func()) error {
	// Quitting the TUI stops the background work as well.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		// Wait for the welcome screen to finish
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()

		stopFunc()
		errCh <- nil
	}()

	_, runErr := p.Run()
	cancel()
	err := <-errCh
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return err
}

func shutdown(stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = stop(ctx)
}
