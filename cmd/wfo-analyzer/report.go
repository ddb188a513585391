package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/reporting"
)

func newReportCommand(a *app) *cobra.Command {
	var (
		outputDir string
		formats   []string
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:     "report <analysis.json>",
		Short:   "Re-render a saved JSON analysis to the console and other formats",
		Example: "  wfo-analyzer report results/wfo_analysis_lab-42_20240501_100000.json --format xlsx",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := reporting.ReadAnalysisJSON(args[0])
			if err != nil {
				return err
			}

			cfg := reporting.ReportingConfig{
				EnableConsole:   !quiet,
				EnableFiles:     len(formats) > 0,
				OutputDirectory: outputDir,
			}
			for _, f := range formats {
				switch f {
				case "csv":
					cfg.CSVEnabled = true
				case "xlsx":
					cfg.ExcelEnabled = true
				case "json":
					cfg.JSONEnabled = true
				default:
					return fmt.Errorf("unsupported format %q, expected csv, xlsx or json", f)
				}
			}

			reporter := reporting.NewReporter(reporting.NewConsoleReporter(cmd.OutOrStdout()))
			written, err := reporting.NewReportingManagerWith(reporter, cfg).Report(analysis)
			for _, path := range written {
				a.logger.Info().Str("path", path).Msg("report written")
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", reporting.DefaultOutputDirectory, "Report directory")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "Report formats to write: csv, xlsx, json")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the console summary")
	return cmd
}
