package main

import (
	"github.com/spf13/cobra"

	pkgconfig "github.com/ducminhle1904/crypto-wfo-analyzer/pkg/config"
)

// analysisFlags are shared by the commands that build a walk-forward config
type analysisFlags struct {
	configFile string
	overrides  pkgconfig.Overrides
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.configFile, "config", "c", "", "Analysis config file (YAML or JSON)")
	flags.StringVar(&f.overrides.LabID, "lab", "", "Lab ID to analyze")
	flags.StringVar(&f.overrides.StartDate, "start", "", "Start of the analysis range (YYYY-MM-DD)")
	flags.StringVar(&f.overrides.EndDate, "end", "", "End of the analysis range (YYYY-MM-DD)")
	flags.IntVar(&f.overrides.TrainingDays, "training-days", 0, "Training window length in days (default 365)")
	flags.IntVar(&f.overrides.TestingDays, "testing-days", 0, "Testing window length in days (default 90)")
	flags.IntVar(&f.overrides.StepDays, "step-days", 0, "Days between successive periods (default 30)")
	flags.StringVar(&f.overrides.Mode, "mode", "", "Window mode: rolling, expanding or fixed (default rolling)")
}

func (f *analysisFlags) load() (*pkgconfig.AnalysisSettings, error) {
	return pkgconfig.LoadAnalysisConfig(f.configFile, f.overrides)
}
