package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

func selectionConfig() *contract.Config {
	return &contract.Config{
		JobName:        "checkout-service",
		Output:         schema.TableOut,
		Precision:      1,
		Width:          100,
		BufferFactor:   1.2,
		Bias:           schema.BalancedBias,
		HistoryBackend: schema.SQLiteBackend,
	}
}

func sampleSelection() schema.SelectionResult {
	return schema.SelectionResult{
		Class: schema.InstanceClass{
			Name:          "large",
			InstanceType:  "t3.large",
			MemoryGB:      8,
			CPUCount:      2,
			ExecutorSlots: 2,
			AgentLabel:    "builder-large",
			HourlyUSD:     decimal.RequireFromString("0.0832"),
		},
		Prediction: schema.PredictionResult{
			CPUPercent:  62.5,
			MemoryGB:    3.4,
			TimeMinutes: 12.5,
			Confidence:  schema.HighConfidence,
			Method:      schema.ModelMethod,
		},
		BufferFactor:     1.2,
		BufferedMemoryGB: 4.08,
		EstimatedCostUSD: decimal.RequireFromString("0.0173"),
		Reasons: []string{
			"predicted 4.1 GB buffered memory fits large (8 GB)",
			"docker image build present",
		},
		ElapsedMS: 1200,
	}
}

func TestWriteSelectionTable(t *testing.T) {
	cfg := selectionConfig()
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeSelectionTable(sampleSelection(), cfg, fmtFloat, intFmt, 850*time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Selected instance class")
	assert.Contains(t, out, "large")
	assert.Contains(t, out, "t3.large")
	assert.Contains(t, out, "builder-large")
	assert.Contains(t, out, "0.0832")
	assert.Contains(t, out, "cpu 62.5%")
	assert.Contains(t, out, "confidence: High")
	assert.Contains(t, out, "method: model")
	assert.Contains(t, out, "Buffered memory: 4.1 GB (factor 1.20x)")
	assert.Contains(t, out, "Estimated cost: $0.0173")
	assert.Contains(t, out, "Reasons:")
	assert.Contains(t, out, "docker image build present")
	assert.Contains(t, out, "Selection completed in 850ms")
	assert.Contains(t, out, "History backend: sqlite")
	assert.NotContains(t, out, "Demand exceeds")
}

func TestWriteSelectionTableAtCapacity(t *testing.T) {
	cfg := selectionConfig()
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	result := sampleSelection()
	result.AtCapacity = true

	var buf bytes.Buffer
	err := writeSelectionTable(result, cfg, fmtFloat, intFmt, time.Second, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Demand exceeds the largest class")
}

func TestWriteSelectionTableEmojis(t *testing.T) {
	cfg := selectionConfig()
	cfg.UseEmojis = true
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeSelectionTable(sampleSelection(), cfg, fmtFloat, intFmt, time.Second, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "🎯 Selected instance class")
	assert.Contains(t, buf.String(), "📈 Prediction:")
}

func TestWriteSelectionJSON(t *testing.T) {
	cfg := selectionConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "selection.json")

	err := WriteSelection(sampleSelection(), cfg, time.Second)
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))

	class, ok := decoded["class"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "large", class["name"])
	assert.Equal(t, "t3.large", class["instance_type"])

	prediction, ok := decoded["prediction"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "high", prediction["confidence"])
	assert.Equal(t, 62.5, prediction["cpu"])
	assert.Equal(t, 1.2, decoded["buffer_factor"])
}

func TestWriteSelectionCSV(t *testing.T) {
	cfg := selectionConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "selection.csv")

	err := WriteSelection(sampleSelection(), cfg, time.Second)
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2) // header + 1 row

	header := records[0]
	row := records[1]
	require.Equal(t, len(header), len(row))

	byColumn := make(map[string]string, len(header))
	for i, name := range header {
		byColumn[name] = row[i]
	}
	assert.Equal(t, "checkout-service", byColumn["job"])
	assert.Equal(t, "large", byColumn["class"])
	assert.Equal(t, "t3.large", byColumn["instance_type"])
	assert.Equal(t, "8.0", byColumn["memory_gb"])
	assert.Equal(t, "High", byColumn["confidence"])
	assert.Equal(t, "model", byColumn["method"])
	assert.Equal(t, "1.20", byColumn["buffer_factor"])
	assert.Equal(t, "false", byColumn["at_capacity"])
	assert.Equal(t, "0.0173", byColumn["estimated_cost_usd"])
	assert.Equal(t, "1200", byColumn["elapsed_ms"])
}
