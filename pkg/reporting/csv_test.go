package reporting

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultHeaders(t *testing.T) {
	headers := ResultHeaders([]string{"sl", "tp"})

	require.Len(t, headers, 13+12+2)
	assert.Equal(t, "period_id", headers[0])
	assert.Equal(t, "best_candidate_id", headers[5])
	assert.Equal(t, "error_message", headers[11])
	assert.Equal(t, "candidate_count", headers[12])
	assert.Equal(t, "training_roi", headers[13])
	assert.Equal(t, "testing_sharpe_ratio", headers[24])
	assert.Equal(t, []string{"param_sl", "param_tp"}, headers[25:])
}

func TestParameterNames_SortedUnion(t *testing.T) {
	a := sampleAnalysis()
	a.Results[1].Parameters = map[string]float64{"grid": 3, "tp": 0.01}

	assert.Equal(t, []string{"grid", "sl", "tp"}, ParameterNames(a.Results))
}

func TestWriteResults_Rows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDefaultCSVReporter().WriteResults(sampleAnalysis(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header, ok, failed := records[0], records[1], records[2]
	require.Len(t, ok, len(header))
	require.Len(t, failed, len(header))

	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}

	assert.Equal(t, "0", ok[col("period_id")])
	assert.Equal(t, "2022-01-01", ok[col("training_start")])
	assert.Equal(t, "2022-04-02", ok[col("testing_end")])
	assert.Equal(t, "cand-001", ok[col("best_candidate_id")])
	assert.Equal(t, "12.5", ok[col("out_of_sample_return")])
	assert.Equal(t, "0.625", ok[col("stability_score")])
	assert.Equal(t, "true", ok[col("success")])
	assert.Equal(t, "30", ok[col("training_total_trades")])
	assert.Equal(t, "0.05", ok[col("param_sl")])

	assert.Equal(t, "1", failed[col("period_id")])
	assert.Equal(t, "false", failed[col("success")])
	assert.Contains(t, failed[col("error_message")], "no candidates")
	assert.Equal(t, "0", failed[col("out_of_sample_return")])
	assert.Equal(t, "", failed[col("param_tp")])
}

func TestWriteResultsCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	require.NoError(t, NewDefaultCSVReporter().WriteResultsCSV(sampleAnalysis(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "period_id,training_start")
	assert.Contains(t, string(data), "cand-001")
}
