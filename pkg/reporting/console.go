package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return NewConsoleReporter(os.Stdout)
}

// NewConsoleReporter creates a console reporter writing to w
func NewConsoleReporter(w io.Writer) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: w}
}

func (r *DefaultConsoleReporter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

// PrintSummary prints the headline statistics of an analysis
func (r *DefaultConsoleReporter) PrintSummary(a *walkforward.AnalysisResult) {
	t := r.newTable("WALK-FORWARD ANALYSIS")

	t.AppendRows([]table.Row{
		{"Lab", a.LabID},
		{"Run", a.RunID},
		{"Mode", a.Config.Mode.String()},
		{"Range", fmt.Sprintf("%s → %s", a.Config.TotalStart.Format(walkforward.DateLayout), a.Config.TotalEnd.Format(walkforward.DateLayout))},
		{"Windows", fmt.Sprintf("train %dd / test %dd / step %dd", a.Config.TrainingDurationDays, a.Config.TestingDurationDays, a.Config.StepSizeDays)},
	})
	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"Periods", fmt.Sprintf("%d (%d ok, %d failed)", a.TotalPeriods, a.SuccessfulPeriods, a.FailedPeriods)},
		{"Success Rate", fmt.Sprintf("%.1f%%", a.Summary.SuccessRate*100)},
		{"Avg Return", fmt.Sprintf("%.2f%%", a.AverageReturn)},
		{"Best / Worst", fmt.Sprintf("%.2f%% / %.2f%%", a.BestPeriodReturn, a.WorstPeriodReturn)},
		{"Return Std Dev", fmt.Sprintf("%.2f", a.Summary.StdReturn)},
		{"Mean Sharpe", fmt.Sprintf("%.2f", a.Summary.MeanSharpe)},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", a.Summary.MaxDrawdown)},
	})
	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"Stability", fmt.Sprintf("%.3f (%s)", a.AggregateStability, a.Stability.Trend)},
		{"Consistency", fmt.Sprintf("%.1f%% positive", a.Summary.ConsistencyRatio*100)},
		{"Degradation", fmt.Sprintf("%.2f", a.Stability.PerformanceDegradation)},
		{"Risk/Return", fmt.Sprintf("%.2f", a.Attribution.RiskReturnRatio)},
	})

	if a.Cancelled {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Status", "CANCELLED (partial results)"})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 50, Align: text.AlignLeft},
	})

	t.Render()
}

// PrintPeriodResults prints one row per analyzed period
func (r *DefaultConsoleReporter) PrintPeriodResults(a *walkforward.AnalysisResult) {
	t := r.newTable("PERIOD RESULTS")
	t.AppendHeader(table.Row{"#", "Training", "Testing", "Candidate", "OOS Return", "OOS Sharpe", "OOS DD", "Stability", "Status"})

	for _, res := range a.Results {
		if !res.Success {
			t.AppendRow(table.Row{
				res.Period.ID,
				res.Period.TrainingWindow().String(),
				res.Period.TestingWindow().String(),
				"-", "-", "-", "-", "-",
				"❌ " + res.Error,
			})
			continue
		}
		t.AppendRow(table.Row{
			res.Period.ID,
			res.Period.TrainingWindow().String(),
			res.Period.TestingWindow().String(),
			res.CandidateID,
			fmt.Sprintf("%.2f%%", res.OutOfSampleReturn),
			fmt.Sprintf("%.2f", res.OutOfSampleSharpe),
			fmt.Sprintf("%.2f%%", res.OutOfSampleMaxDrawdown),
			fmt.Sprintf("%.3f", res.StabilityScore),
			"✅",
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, WidthMax: 20},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, WidthMax: 60, Align: text.AlignLeft},
	})

	t.Render()
}

// PrintRecommendations prints the advice derived from the analysis
func (r *DefaultConsoleReporter) PrintRecommendations(a *walkforward.AnalysisResult) {
	fmt.Fprintln(r.out, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(r.out, "💡 RECOMMENDATIONS")
	fmt.Fprintln(r.out, strings.Repeat("=", 50))
	for i, rec := range a.Recommendations {
		fmt.Fprintf(r.out, "%d. %s\n", i+1, rec)
	}
}

// PrintSchedule prints the generated periods without analyzing them
func (r *DefaultConsoleReporter) PrintSchedule(periods []walkforward.Period) {
	t := r.newTable(fmt.Sprintf("WALK-FORWARD SCHEDULE (%d periods)", len(periods)))
	t.AppendHeader(table.Row{"#", "Training Start", "Training End", "Testing Start", "Testing End"})

	for _, p := range periods {
		t.AppendRow(table.Row{
			p.ID,
			p.TrainingStart.Format(walkforward.DateLayout),
			p.TrainingEnd.Format(walkforward.DateLayout),
			p.TestingStart.Format(walkforward.DateLayout),
			p.TestingEnd.Format(walkforward.DateLayout),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})
	t.Render()
}

// PrintAll prints summary, period table and recommendations
func (r *DefaultConsoleReporter) PrintAll(a *walkforward.AnalysisResult) {
	r.PrintSummary(a)
	r.PrintPeriodResults(a)
	r.PrintRecommendations(a)
}
