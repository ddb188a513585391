package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

// RunAlert turns a finished run into an alert level and message.
// analysis may be nil when the run failed before any period was processed.
func RunAlert(labID string, analysis *walkforward.AnalysisResult, runErr error) (string, string) {
	if analysis == nil {
		return LevelError, fmt.Sprintf("Lab `%s`: analysis failed\n%v", labID, runErr)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Lab `%s`\n", analysis.LabID)
	fmt.Fprintf(&b, "Periods: %d/%d successful\n", analysis.SuccessfulPeriods, analysis.TotalPeriods)
	fmt.Fprintf(&b, "Average OOS return: %.2f%%\n", analysis.AverageReturn)
	fmt.Fprintf(&b, "Stability: %.3f", analysis.AggregateStability)

	level := LevelSuccess
	switch {
	case analysis.Cancelled:
		level = LevelWarning
		b.WriteString("\nRun was cancelled, results are partial")
	case runErr != nil:
		level = LevelError
		fmt.Fprintf(&b, "\nError: %v", runErr)
	case analysis.SuccessfulPeriods == 0:
		level = LevelError
	case analysis.FailedPeriods > 0:
		level = LevelWarning
	}

	return level, b.String()
}

// NotifyRun sends the alert for a finished run
func NotifyRun(ctx context.Context, notifier Notifier, labID string, analysis *walkforward.AnalysisResult, runErr error) error {
	level, message := RunAlert(labID, analysis, runErr)
	return notifier.SendAlert(ctx, level, message)
}
