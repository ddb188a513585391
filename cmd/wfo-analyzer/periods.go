package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/reporting"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

func newPeriodsCommand(a *app) *cobra.Command {
	var (
		flags  analysisFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "periods",
		Short:   "Print the walk-forward schedule without analyzing it",
		Example: "  wfo-analyzer periods --start 2022-01-01 --end 2023-12-31 --training-days 60 --testing-days 30 --step-days 30",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.load()
			if err != nil {
				return err
			}

			periods, err := walkforward.GeneratePeriods(settings.Config)
			if err != nil {
				return err
			}
			a.logger.Debug().Int("periods", len(periods)).Str("mode", settings.Config.Mode.String()).Msg("schedule generated")

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(periods)
			}

			reporting.NewConsoleReporter(cmd.OutOrStdout()).PrintSchedule(periods)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the periods as JSON")
	return cmd
}
