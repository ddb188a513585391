package reporting

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

// periodColumns are written first, in this order
var periodColumns = []string{
	"period_id",
	"training_start",
	"training_end",
	"testing_start",
	"testing_end",
	"best_candidate_id",
	"out_of_sample_return",
	"out_of_sample_sharpe",
	"out_of_sample_max_drawdown",
	"stability_score",
	"success",
	"error_message",
	"candidate_count",
}

var metricColumns = []string{"roi", "win_rate", "total_trades", "max_drawdown", "profit_factor", "sharpe_ratio"}

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteResultsCSV writes one row per period to path
func (r *DefaultCSVReporter) WriteResultsCSV(analysis *walkforward.AnalysisResult, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	// If the user requests an Excel file, delegate to Excel writer
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return NewDefaultExcelReporter().WriteResultsXLSX(analysis, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return r.WriteResults(analysis, f)
}

// WriteResults writes the per-period CSV to w
func (r *DefaultCSVReporter) WriteResults(analysis *walkforward.AnalysisResult, w io.Writer) error {
	cw := csv.NewWriter(w)

	params := ParameterNames(analysis.Results)
	if err := cw.Write(ResultHeaders(params)); err != nil {
		return err
	}

	for _, result := range analysis.Results {
		if err := cw.Write(resultRow(result, params)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ResultHeaders returns the period columns, the training_/testing_ metric columns and one
// param_<name> column per parameter
func ResultHeaders(params []string) []string {
	headers := append([]string{}, periodColumns...)
	for _, prefix := range []string{"training_", "testing_"} {
		for _, m := range metricColumns {
			headers = append(headers, prefix+m)
		}
	}
	for _, p := range params {
		headers = append(headers, "param_"+p)
	}
	return headers
}

// ParameterNames returns the sorted union of parameter names over all results
func ParameterNames(results []walkforward.Result) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range results {
		for name := range r.Parameters {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func resultRow(r walkforward.Result, params []string) []string {
	row := []string{
		strconv.Itoa(r.Period.ID),
		r.Period.TrainingStart.Format(walkforward.DateLayout),
		r.Period.TrainingEnd.Format(walkforward.DateLayout),
		r.Period.TestingStart.Format(walkforward.DateLayout),
		r.Period.TestingEnd.Format(walkforward.DateLayout),
		r.CandidateID,
		formatFloat(r.OutOfSampleReturn),
		formatFloat(r.OutOfSampleSharpe),
		formatFloat(r.OutOfSampleMaxDrawdown),
		formatFloat(r.StabilityScore),
		strconv.FormatBool(r.Success),
		r.Error,
		strconv.Itoa(r.CandidateCount),
	}

	row = append(row, metricValues(r.TrainingMetrics)...)
	row = append(row, metricValues(r.TestingMetrics)...)

	for _, p := range params {
		v, ok := r.Parameters[p]
		if !ok {
			row = append(row, "")
			continue
		}
		row = append(row, formatFloat(v))
	}

	return row
}

func metricValues(m walkforward.Metrics) []string {
	return []string{
		formatFloat(m.ROI),
		formatFloat(m.WinRate),
		strconv.Itoa(m.TotalTrades),
		formatFloat(m.MaxDrawdown),
		formatFloat(m.ProfitFactor),
		formatFloat(m.SharpeRatio),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
