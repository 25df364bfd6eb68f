package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devtud/jobsupervisor/internal/api"
	"github.com/devtud/jobsupervisor/internal/config"
	"github.com/devtud/jobsupervisor/internal/jobsupervisor"
	"github.com/devtud/jobsupervisor/internal/logger"
	"github.com/devtud/jobsupervisor/internal/metrics"
	"github.com/devtud/jobsupervisor/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the job supervisor daemon",
	Long: `Start the job supervisor in daemon mode: loads configuration, brings up
the tick loop, the HTTP control plane, the Prometheus /metrics endpoint and
OpenTelemetry tracing, registers the builtin jobs named in the config, and
blocks until SIGINT/SIGTERM.`,
	Run: runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Global.LogLevel, cfg.Global.LogFormat)
	slog.SetDefault(log)

	log.Info("jobsupervisor starting",
		"version", version,
		"pid", os.Getpid(),
		"tick_interval_ms", cfg.Global.TickIntervalMS,
		"jobs_declared", len(cfg.Jobs),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewProvider(ctx, tracing.TracerConfig{
		Enabled:        cfg.Global.TracingEnabled,
		Exporter:       cfg.Global.TracingExporter,
		Endpoint:       cfg.Global.TracingEndpoint,
		SampleRate:     cfg.Global.TracingSampleRate,
		ServiceName:    cfg.Global.ServiceName,
		Version:        version,
		TickIntervalMS: cfg.Global.TickIntervalMS,
	}, log)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	var metricsServer *metrics.Server
	if cfg.Global.MetricsEnabled {
		metricsServer = metrics.NewServer(cfg.Global.MetricsPort, cfg.Global.MetricsPath, log)
		if err := metricsServer.Start(ctx); err != nil {
			log.Error("failed to start metrics server", "error", err)
			os.Exit(1)
		}
		metrics.SetBuildInfo(version, "go1.x")
	}

	sup := jobsupervisor.New(
		jobsupervisor.WithTickInterval(time.Duration(cfg.Global.TickIntervalMS)*time.Millisecond),
		jobsupervisor.WithLogger(log),
		jobsupervisor.WithCallbacks(jobsupervisor.Callbacks{
			OnFinished:  func(name string) { log.Info("job finished", "job", name) },
			OnFailed:    func(name string, err error) { log.Warn("job failed", "job", name, "error", err) },
			OnCancelled: func(name string) { log.Info("job cancelled", "job", name) },
		}),
	)
	sup.OnStartup(func() { log.Info("supervisor tick loop starting") })
	sup.OnShutdown(func() { log.Info("supervisor tick loop stopped") })

	registerConfiguredJobs(sup, cfg, log)

	var apiServer *api.Server
	if cfg.Global.APIEnabled {
		apiServer = api.NewServer(cfg.Global.APIPort, cfg.Global.APIAuth, sup, log)
		if err := apiServer.Start(ctx); err != nil {
			log.Error("failed to start api server", "error", err)
			os.Exit(1)
		}
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		sup.Run(ctx, nil)
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownStart := time.Now()
	sup.Shutdown()
	<-runDone
	metrics.RecordShutdownDuration(time.Since(shutdownStart).Seconds())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Global.ShutdownGrace)*time.Second)
	defer cancel()

	if apiServer != nil {
		if err := apiServer.Stop(shutdownCtx); err != nil {
			log.Warn("api server shutdown error", "error", err)
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			log.Warn("metrics server shutdown error", "error", err)
		}
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("tracing shutdown error", "error", err)
	}

	log.Info("jobsupervisor shutdown complete")
}

// registerConfiguredJobs registers every enabled job named in cfg.Jobs that
// also appears in the builtin catalog, carrying its cron expression through
// to the Supervisor; jobs the config disables are not registered at all. A
// configured name with no matching
// builtin body is logged and skipped rather than failing startup, the same
// tolerant-of-unknown-entries posture the Supervisor's hydration path
// takes toward unknown job names (spec.md §4.6).
func registerConfiguredJobs(sup *jobsupervisor.Supervisor, cfg *config.Config, log *slog.Logger) {
	catalog := builtinJobs(sup, log)
	for name, job := range cfg.Jobs {
		if !job.EnabledOrDefault() {
			log.Info("configured job disabled, not registering", "job", name)
			continue
		}
		body, ok := catalog[name]
		if !ok {
			log.Warn("configured job has no matching builtin body, skipping", "job", name)
			continue
		}
		var cron *string
		if job.Cron != "" {
			c := job.Cron
			cron = &c
		}
		if _, err := sup.Register(name, body, cron); err != nil {
			log.Error("failed to register configured job", "job", name, "error", err)
		}
	}
}
