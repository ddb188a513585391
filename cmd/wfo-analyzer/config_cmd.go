package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	pkgconfig "github.com/ducminhle1904/crypto-wfo-analyzer/pkg/config"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and check analysis config files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "wfo.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			settings := pkgconfig.NewDefaultSettings()
			settings.LabID = "my-lab"
			now := time.Now().UTC()
			settings.Config.TotalEnd = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			settings.Config.TotalStart = settings.Config.TotalEnd.AddDate(-2, 0, 0)

			if err := pkgconfig.NewAnalysisConfigManager().SaveConfig(settings, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Config written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	var flags analysisFlags
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a config file and print the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.load()
			if err != nil {
				return err
			}

			c := settings.Config
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ Config is valid\n")
			fmt.Fprintf(out, "Lab:      %s\n", settings.LabID)
			fmt.Fprintf(out, "Range:    %s → %s\n", c.TotalStart.Format("2006-01-02"), c.TotalEnd.Format("2006-01-02"))
			fmt.Fprintf(out, "Windows:  train %dd / test %dd / step %dd (%s)\n", c.TrainingDurationDays, c.TestingDurationDays, c.StepSizeDays, c.Mode)
			fmt.Fprintf(out, "Filters:  min trades %d, min win rate %.2f, max drawdown %.2f\n", c.MinTrades, c.MinWinRate, c.MaxDrawdownThreshold)
			fmt.Fprintf(out, "Workers:  %d\n", settings.Workers)
			fmt.Fprintf(out, "Outputs:  %v → %s\n", settings.Output.Formats, settings.Output.Directory)
			a.logger.Debug().Str("file", flags.configFile).Msg("config checked")
			return nil
		},
	}
	flags.register(checkCmd)

	cmd.AddCommand(initCmd, checkCmd)
	return cmd
}
