package reporting

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintAnalysis_Fields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDefaultJSONFormatter().PrintAnalysis(sampleAnalysis(), &buf))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))

	assert.Equal(t, "lab-abcdef123456", raw["lab_id"])
	assert.EqualValues(t, 2, raw["total_periods"])
	assert.EqualValues(t, 1, raw["successful_periods"])
	assert.Contains(t, raw, "summary_metrics")
	assert.Contains(t, raw, "parameter_evolution")

	cfg := raw["config"].(map[string]interface{})
	assert.Equal(t, "ROLLING_WINDOW", cfg["mode"])
}

func TestWriteAndReadAnalysisJSON(t *testing.T) {
	original := sampleAnalysis()
	path := filepath.Join(t.TempDir(), "analysis.json")

	require.NoError(t, NewDefaultJSONFormatter().WriteAnalysisJSON(original, path))

	loaded, err := ReadAnalysisJSON(path)
	require.NoError(t, err)

	assert.Equal(t, original.RunID, loaded.RunID)
	assert.Equal(t, original.Config, loaded.Config)
	assert.Equal(t, original.Results, loaded.Results)
	assert.Equal(t, original.Summary, loaded.Summary)
	assert.Equal(t, original.Recommendations, loaded.Recommendations)
	assert.True(t, original.CompletedAt.Equal(loaded.CompletedAt))
	assert.Equal(t, walkforward.RollingWindow, loaded.Periods[0].Mode)
}

func TestReadAnalysisJSON_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, NewDefaultJSONFormatter().WriteAnalysisJSON(sampleAnalysis(), path))
	require.NoError(t, writeString(path, "{not json"))

	_, err := ReadAnalysisJSON(path)
	assert.Error(t, err)

	_, err = ReadAnalysisJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
