package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	envconfig "github.com/ducminhle1904/crypto-wfo-analyzer/internal/config"
	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/logger"
)

const appName = "wfo-analyzer"

// app carries the process-wide state shared by the subcommands
type app struct {
	env    *envconfig.Config
	log    *logger.Logger
	logger zerolog.Logger

	envFile   string
	logLevel  string
	logFormat string
	logFile   string
}

// autoLogFile selects logs/wfo_<lab>_<date>.log as the log file
const autoLogFile = "auto"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339

	a := newApp()
	err := a.rootCommand().Execute()
	// cobra skips post-run hooks when a command fails
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{logger: zerolog.Nop()}
}

func (a *app) close() {
	if a.log == nil {
		return
	}
	if err := a.log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Walk-forward optimization analysis for lab backtest results",
		Long: `wfo-analyzer slices a date range into successive training and testing windows,
picks the best lab candidate in every training window and measures how it holds up
in the following, unseen testing window.`,
		Version:       ProjectVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "Environment file to load")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (env LOG_LEVEL)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: console or json (env LOG_FORMAT)")
	flags.StringVar(&a.logFile, "log-file", "", "Also write JSON logs to this file; \"auto\" uses logs/wfo_<lab>_<date>.log (env LOG_FILE)")

	rootCmd.AddCommand(
		newAnalyzeCommand(a),
		newPeriodsCommand(a),
		newReportCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	loaded, err := envconfig.LoadEnvFile(a.envFile)
	if err != nil {
		return fmt.Errorf("could not load environment file %s: %w", a.envFile, err)
	}

	a.env = envconfig.Load()
	opts := logger.Options{
		Level:  firstNonEmpty(a.logLevel, a.env.LogLevel),
		Format: firstNonEmpty(a.logFormat, a.env.LogFormat),
		File:   firstNonEmpty(a.logFile, a.env.LogFile),
		Out:    cmd.ErrOrStderr(),
	}
	if opts.File == autoLogFile {
		opts.File = logger.SessionFileName(labFlag(cmd), time.Now())
	}

	a.log, err = logger.New(opts)
	if err != nil {
		return err
	}
	a.logger = a.log.Logger

	if loaded {
		a.logger.Debug().Str("file", a.envFile).Msg("environment loaded")
	}
	if path := a.log.GetLogPath(); path != "" {
		a.logger.Debug().Str("path", path).Msg("writing log file")
	}
	return nil
}

// labFlag returns the --lab value of commands that take one
func labFlag(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("lab"); f != nil {
		return f.Value.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
