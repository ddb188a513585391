package reporting

import (
	"fmt"
	"sort"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook
const (
	PeriodsSheet    = "Periods"
	SummarySheet    = "Summary"
	ParametersSheet = "Parameters"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteResultsXLSX writes the periods, summary and parameter evolution to an Excel workbook
func (r *DefaultExcelReporter) WriteResultsXLSX(analysis *walkforward.AnalysisResult, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), PeriodsSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(SummarySheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(ParametersSheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writePeriodsSheet(fx, PeriodsSheet, analysis, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, SummarySheet, analysis, styles); err != nil {
		return err
	}
	if err := r.writeParametersSheet(fx, ParametersSheet, analysis, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	styles.TitleStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "2F4F4F", Family: "Calibri"},
	})
	if err != nil {
		return styles, err
	}

	// Dark slate header with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return styles, err
	}

	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    4, // #,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10, // 0.00%
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	// Light red row for failed periods
	styles.FailedStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Color: "9C0006"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

func (r *DefaultExcelReporter) writePeriodsSheet(fx *excelize.File, sheet string, analysis *walkforward.AnalysisResult, styles ExcelStyles) error {
	params := ParameterNames(analysis.Results)
	headers := ResultHeaders(params)

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		fx.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	fx.SetCellStyle(sheet, "A1", last, styles.HeaderStyle)

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	fx.SetColWidth(sheet, "A", "A", 10)
	fx.SetColWidth(sheet, "B", "E", 13)
	fx.SetColWidth(sheet, "F", "F", 20)
	fx.SetColWidth(sheet, "G", lastCol, 14)
	fx.SetColWidth(sheet, "L", "L", 40) // error_message

	for i, result := range analysis.Results {
		row := i + 2
		values := periodRowValues(result, params)

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			fx.SetCellValue(sheet, cell, v)
		}

		first, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(values), row)
		if !result.Success {
			fx.SetCellStyle(sheet, first, end, styles.FailedStyle)
			continue
		}
		fx.SetCellStyle(sheet, first, end, styles.BaseStyle)

		// out-of-sample figures through testing metrics
		numFirst, _ := excelize.CoordinatesToCellName(7, row)
		numEnd, _ := excelize.CoordinatesToCellName(10, row)
		fx.SetCellStyle(sheet, numFirst, numEnd, styles.NumberStyle)
	}

	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// periodRowValues mirrors the CSV row with native cell types
func periodRowValues(r walkforward.Result, params []string) []interface{} {
	values := []interface{}{
		r.Period.ID,
		r.Period.TrainingStart.Format(walkforward.DateLayout),
		r.Period.TrainingEnd.Format(walkforward.DateLayout),
		r.Period.TestingStart.Format(walkforward.DateLayout),
		r.Period.TestingEnd.Format(walkforward.DateLayout),
		r.CandidateID,
		r.OutOfSampleReturn,
		r.OutOfSampleSharpe,
		r.OutOfSampleMaxDrawdown,
		r.StabilityScore,
		r.Success,
		r.Error,
		r.CandidateCount,
	}

	for _, m := range []walkforward.Metrics{r.TrainingMetrics, r.TestingMetrics} {
		values = append(values, m.ROI, m.WinRate, m.TotalTrades, m.MaxDrawdown, m.ProfitFactor, m.SharpeRatio)
	}

	for _, p := range params {
		if v, ok := r.Parameters[p]; ok {
			values = append(values, v)
		} else {
			values = append(values, "")
		}
	}

	return values
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, a *walkforward.AnalysisResult, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 28)
	fx.SetColWidth(sheet, "B", "B", 40)

	fx.SetCellValue(sheet, "A1", "WALK-FORWARD ANALYSIS")
	fx.SetCellStyle(sheet, "A1", "A1", styles.TitleStyle)

	type entry struct {
		label string
		value interface{}
		style int
	}

	entries := []entry{
		{"Lab ID", a.LabID, styles.BaseStyle},
		{"Run ID", a.RunID, styles.BaseStyle},
		{"Mode", a.Config.Mode.String(), styles.BaseStyle},
		{"Date Range", fmt.Sprintf("%s → %s", a.Config.TotalStart.Format(walkforward.DateLayout), a.Config.TotalEnd.Format(walkforward.DateLayout)), styles.BaseStyle},
		{"Training / Testing / Step (days)", fmt.Sprintf("%d / %d / %d", a.Config.TrainingDurationDays, a.Config.TestingDurationDays, a.Config.StepSizeDays), styles.BaseStyle},
		{"Total Periods", a.TotalPeriods, styles.BaseStyle},
		{"Successful Periods", a.SuccessfulPeriods, styles.BaseStyle},
		{"Failed Periods", a.FailedPeriods, styles.BaseStyle},
		{"Success Rate", a.Summary.SuccessRate, styles.PercentStyle},
		{"Average Return (%)", a.AverageReturn, styles.NumberStyle},
		{"Median Return (%)", a.Summary.MedianReturn, styles.NumberStyle},
		{"Return Std Dev", a.Summary.StdReturn, styles.NumberStyle},
		{"Best Period Return (%)", a.BestPeriodReturn, styles.NumberStyle},
		{"Worst Period Return (%)", a.WorstPeriodReturn, styles.NumberStyle},
		{"Mean Sharpe", a.Summary.MeanSharpe, styles.NumberStyle},
		{"Max Drawdown (%)", a.Summary.MaxDrawdown, styles.NumberStyle},
		{"Aggregate Stability", a.AggregateStability, styles.NumberStyle},
		{"Stability Trend", string(a.Stability.Trend), styles.BaseStyle},
		{"Consistency Ratio", a.Summary.ConsistencyRatio, styles.PercentStyle},
		{"Performance Degradation", a.Stability.PerformanceDegradation, styles.NumberStyle},
		{"Risk/Return Ratio", a.Attribution.RiskReturnRatio, styles.NumberStyle},
		{"Cancelled", a.Cancelled, styles.BaseStyle},
	}

	row := 3
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Metric")
	fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), "Value")
	fx.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), styles.HeaderStyle)

	for _, e := range entries {
		row++
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.label)
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.value)
		fx.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.BaseStyle)
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), e.style)
	}

	row += 2
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Recommendations")
	fx.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.TitleStyle)
	for _, rec := range a.Recommendations {
		row++
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), "•")
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), rec)
	}

	return nil
}

func (r *DefaultExcelReporter) writeParametersSheet(fx *excelize.File, sheet string, a *walkforward.AnalysisResult, styles ExcelStyles) error {
	evolution := a.ParameterEvolution
	names := make([]string, 0, len(evolution.Stats))
	for name := range evolution.Stats {
		names = append(names, name)
	}
	sort.Strings(names)

	// Per-parameter stability
	headers := []string{"Parameter", "Mean", "Std Dev", "Coefficient of Variation", "Observations"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
	}
	fx.SetCellStyle(sheet, "A1", "E1", styles.HeaderStyle)
	fx.SetColWidth(sheet, "A", "A", 22)
	fx.SetColWidth(sheet, "B", "E", 16)

	row := 1
	for _, name := range names {
		row++
		s := evolution.Stats[name]
		for col, v := range []interface{}{name, s.Mean, s.StdDev, s.CoefficientOfVariation, s.Observations} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			fx.SetCellValue(sheet, cell, v)
		}
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("D%d", row), styles.NumberStyle)
	}

	// Selected values per period
	row += 2
	trace := append([]string{"Period", "Candidate"}, names...)
	for i, h := range trace {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		fx.SetCellValue(sheet, cell, h)
	}
	end, _ := excelize.CoordinatesToCellName(len(trace), row)
	fx.SetCellStyle(sheet, fmt.Sprintf("A%d", row), end, styles.HeaderStyle)

	for _, snap := range evolution.Snapshots {
		row++
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), snap.PeriodID)
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), snap.CandidateID)
		for i, name := range names {
			if v, ok := snap.Parameters[name]; ok {
				cell, _ := excelize.CoordinatesToCellName(i+3, row)
				fx.SetCellValue(sheet, cell, v)
			}
		}
	}

	return nil
}
