package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/internal/telemetry"
	"github.com/veterinaryhq/userd/pkg/api"
	"github.com/veterinaryhq/userd/pkg/config"
	"github.com/veterinaryhq/userd/pkg/metrics"
	promMetrics "github.com/veterinaryhq/userd/pkg/metrics/prometheus"
	"github.com/veterinaryhq/userd/pkg/rpc"
	"github.com/veterinaryhq/userd/pkg/runtime"
	"github.com/veterinaryhq/userd/pkg/store/postgres"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the userd server",
	Long: `Start the userd gRPC server with the specified configuration.

The server connects to PostgreSQL before accepting any request; a database
that is unreachable or misconfigured (including an inconsistent pool sizing)
aborts startup.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/userd/config.yaml.

Examples:
  # Start with default config location
  userd start

  # Start with custom config file
  userd start --config /etc/userd/config.yaml

  # Start with environment variable overrides
  USERD_LOGGING_LEVEL=DEBUG userd start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "userd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "userd",
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("configuration loaded",
		logger.Env(cfg.Environment),
		"source", getConfigSource(GetConfigFile()),
		"log_level", cfg.Logging.Level)
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	// Initialize metrics FIRST (before creating components that use them)
	// so constructors see an enabled registry
	if cfg.Ops.Enabled {
		metrics.InitRegistry()
	}

	// Connect the user store. The pool is validated, sized, and pinged here;
	// no listener starts until this succeeds.
	st, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize user store: %w", err)
	}

	if err := promMetrics.RegisterPoolCollector(st.Stat); err != nil {
		return fmt.Errorf("failed to register pool metrics: %w", err)
	}

	// Create the gRPC server
	rpcServer, err := rpc.NewServer(cfg.Server, cfg.ShutdownTimeout, st, promMetrics.NewRPCMetrics())
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	rt := runtime.New(st, cfg.ShutdownTimeout)
	rt.SetRPCServer(rpcServer)

	if cfg.Ops.Enabled {
		rt.SetOpsServer(api.NewServer(cfg.Ops, st))
		logger.Info("ops server enabled", "port", cfg.Ops.Port)
	} else {
		logger.Info("ops server disabled")
	}

	// Start runtime in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- rt.Serve(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("server is running",
		logger.Address(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)),
		logger.Version(Version))

	select {
	case sig := <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received", logger.Signal(sig.String()))
		cancel()

		// Wait for server to shut down gracefully
		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", logger.Err(err))
			return err
		}
		logger.Info("server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", logger.Err(err))
			return err
		}
		logger.Info("server stopped")
	}

	return nil
}
