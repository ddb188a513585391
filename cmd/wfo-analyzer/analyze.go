package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sony/gobreaker"
	"github.com/spf13/cobra"

	envconfig "github.com/ducminhle1904/crypto-wfo-analyzer/internal/config"
	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/monitoring"
	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/notifications"
	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/recovery"
	pkgconfig "github.com/ducminhle1904/crypto-wfo-analyzer/pkg/config"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/data"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/reporting"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

type analyzeOptions struct {
	analysisFlags

	metricsAddr  string
	noCache      bool
	refreshCache bool
	jsonOut      bool
	quiet        bool
}

func newAnalyzeCommand(a *app) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a walk-forward analysis for a lab",
		Example: `  wfo-analyzer analyze --lab lab-42 --source data/labs --start 2022-01-01 --end 2023-12-31
  wfo-analyzer analyze -c wfo.yaml --workers 4 --format csv,xlsx,json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, opts)
		},
	}

	opts.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&opts.overrides.Source, "source", "", "Lab export file or directory of lab exports")
	flags.StringVar(&opts.overrides.DatabaseDSN, "database-dsn", "", "PostgreSQL DSN of the lab database (env WFO_DATABASE_DSN)")
	flags.IntVar(&opts.overrides.Workers, "workers", 0, "Periods analyzed concurrently (default 1)")
	flags.StringVarP(&opts.overrides.OutputDir, "output-dir", "o", "", "Report directory (default results)")
	flags.StringSliceVar(&opts.overrides.Formats, "format", nil, "Report formats: csv, xlsx, json")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address during the run (env WFO_METRICS_ADDR)")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Disable the candidate cache")
	flags.BoolVar(&opts.refreshCache, "refresh-cache", false, "Drop cached candidates (including the shared Redis cache) before the run")
	flags.BoolVar(&opts.jsonOut, "json", false, "Print the full analysis as JSON to stdout")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the console summary")

	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	settings, err := opts.load()
	if err != nil {
		return err
	}
	if settings.LabID == "" {
		return errors.NewConfigurationError("cli", "analyze", "a lab ID is required (--lab or lab_id)")
	}

	if settings.Source.DatabaseDSN == "" && settings.Source.Path == "" {
		settings.Source.DatabaseDSN = a.env.Database.DSN
	}

	stack, err := data.NewStack(a.repositoryOptions(settings, opts.noCache), a.logger)
	if err != nil {
		return errors.NewConfigurationError("cli", "analyze", err.Error())
	}
	defer stack.Close()

	if opts.refreshCache && stack.Cached != nil {
		if err := stack.Cached.ClearCache(cmd.Context()); err != nil {
			a.logger.Warn().Err(err).Msg("could not clear the candidate cache")
		}
	}

	periods, err := walkforward.GeneratePeriods(settings.Config)
	if err != nil {
		return err
	}

	metrics := monitoring.NewMetrics()
	health := monitoring.NewHealthChecker()
	health.BeginRun(settings.LabID, len(periods))
	if stack.Cached != nil {
		if err := metrics.Register(monitoring.NewCacheCollectors(stack.Cached.Stats)...); err != nil {
			return err
		}
	}
	if stack.Guard != nil {
		guard := stack.Guard
		health.SetSourceCheck(func() bool { return guard.State() != gobreaker.StateOpen })
	}

	if addr := firstNonEmpty(opts.metricsAddr, a.env.Monitoring.MetricsAddr); addr != "" {
		server, err := monitoring.NewServer(addr, metrics, health, a.logger)
		if err != nil {
			return fmt.Errorf("could not start monitoring server on %s: %w", addr, err)
		}
		server.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer := walkforward.NewAnalyzer(stack.Repository)
	analyzer.SetLogger(a.logger)
	analyzer.SetWorkerCount(settings.Workers)
	analyzer.SetObserver(walkforward.PeriodObservers{metrics, health})

	analysis, runErr := analyzer.Run(ctx, settings.LabID, settings.Config)
	health.EndRun()
	metrics.RecordRun(analysis)
	a.notifyRun(settings.LabID, analysis, runErr)
	if analysis == nil {
		return runErr
	}

	if err := a.report(cmd, analysis, settings, opts); err != nil {
		return err
	}

	a.logSourceStats(cmd.Context(), stack)

	return runErr
}

func (a *app) report(cmd *cobra.Command, analysis *walkforward.AnalysisResult, settings *pkgconfig.AnalysisSettings, opts *analyzeOptions) error {
	reporter := reporting.NewReporter(reporting.NewConsoleReporter(cmd.OutOrStdout()))

	manager := reporting.NewReportingManagerWith(reporter, reporting.ReportingConfig{
		EnableConsole:   settings.Output.Console && !opts.quiet && !opts.jsonOut,
		EnableFiles:     len(settings.Output.Formats) > 0,
		OutputDirectory: settings.Output.Directory,
		CSVEnabled:      settings.HasFormat(pkgconfig.FormatCSV),
		ExcelEnabled:    settings.HasFormat(pkgconfig.FormatXLSX),
		JSONEnabled:     settings.HasFormat(pkgconfig.FormatJSON),
	})

	written, err := manager.Report(analysis)
	for _, path := range written {
		a.logger.Info().Str("path", path).Msg("report written")
	}
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return reporter.PrintJSON(analysis, cmd.OutOrStdout())
	}
	return nil
}

func (a *app) repositoryOptions(settings *pkgconfig.AnalysisSettings, noCache bool) data.Options {
	env := a.env
	return data.Options{
		Path:          settings.Source.Path,
		DatabaseDSN:   settings.Source.DatabaseDSN,
		MaxDBConns:    env.Database.MaxConns,
		QueryTimeout:  env.Database.QueryTimeout,
		Guard:         guardConfig(env),
		Retry:         recovery.DefaultRetryConfig().WithMaxRetries(env.Guard.MaxRetries),
		RedisAddr:     env.Redis.Addr,
		RedisPassword: env.Redis.Password,
		RedisDB:       env.Redis.DB,
		CacheTTL:      env.Redis.CacheTTL,
		DisableCache:  noCache || env.Redis.Disabled,
	}
}

func (a *app) notifyRun(labID string, analysis *walkforward.AnalysisResult, runErr error) {
	if a.env.Telegram.Token == "" || a.env.Telegram.ChatID == "" {
		return
	}

	// the run context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notifier := notifications.NewTelegramNotifier(a.env.Telegram.Token, a.env.Telegram.ChatID)
	if err := notifications.NotifyRun(ctx, notifier, labID, analysis, runErr); err != nil {
		a.logger.Warn().Err(err).Msg("failed to send run notification")
	}
}

// guardConfig takes the guard limits from env; unset limits keep the data package defaults.
// A zero request rate disables rate limiting.
func guardConfig(env *envconfig.Config) data.GuardConfig {
	cfg := data.DefaultGuardConfig()
	cfg.RequestsPerSecond = env.Guard.RequestsPerSecond
	if env.Guard.CallTimeout > 0 {
		cfg.Timeout = env.Guard.CallTimeout
	}
	if env.Guard.Burst > 0 {
		cfg.Burst = env.Guard.Burst
	}
	if env.Guard.MaxFailures > 0 {
		cfg.MaxConsecutiveFailures = uint32(env.Guard.MaxFailures)
	}
	if env.Guard.OpenTimeout > 0 {
		cfg.OpenTimeout = env.Guard.OpenTimeout
	}
	return cfg
}

// logSourceStats logs cache usage and the failures absorbed by retries
func (a *app) logSourceStats(ctx context.Context, stack *data.Stack) {
	if stack.Cached != nil {
		hits, misses := stack.Cached.Stats()
		event := a.logger.Debug().Int64("hits", hits).Int64("misses", misses)
		if entries, err := stack.Cached.GetCache().Size(ctx); err == nil {
			event = event.Int("entries", entries)
		}
		event.Msg("candidate cache")
	}

	if stack.Retrying == nil {
		return
	}
	stats := stack.Retrying.Handler().GetErrorStats()
	if stats.TotalErrors == 0 {
		return
	}
	event := a.logger.Info().Int("errors", stats.TotalErrors)
	for category, count := range stats.ErrorsByCategory {
		event = event.Str(strings.ToLower(string(category)),
			fmt.Sprintf("%d (%.0f%%)", count, stats.GetErrorRate(category)*100))
	}
	event.Msg("candidate source errors")
}
