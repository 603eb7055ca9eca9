package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

func sampleCatalog() []schema.InstanceClass {
	return []schema.InstanceClass{
		{
			Name:          "small",
			InstanceType:  "t3.small",
			MemoryGB:      2,
			CPUCount:      2,
			ExecutorSlots: 1,
			AgentLabel:    "builder-small",
			HourlyUSD:     decimal.RequireFromString("0.0208"),
		},
		{
			Name:          "xlarge",
			InstanceType:  "t3.xlarge",
			MemoryGB:      16,
			CPUCount:      4,
			ExecutorSlots: 4,
			AgentLabel:    "builder-xlarge",
			HourlyUSD:     decimal.RequireFromString("0.1664"),
		},
	}
}

func TestWriteCatalogTable(t *testing.T) {
	cfg := &contract.Config{Output: schema.TableOut, Precision: 1}
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeCatalogTable(sampleCatalog(), cfg, fmtFloat, intFmt, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Instance class catalog")
	assert.Contains(t, out, "small")
	assert.Contains(t, out, "t3.xlarge")
	assert.Contains(t, out, "builder-xlarge")
	assert.Contains(t, out, "0.0208")
	assert.Contains(t, out, "Showing 2 classes in ascending memory order")
}

func TestWriteCatalogCSV(t *testing.T) {
	cfg := &contract.Config{
		Output:     schema.CSVOut,
		Precision:  1,
		OutputFile: filepath.Join(t.TempDir(), "catalog.csv"),
	}

	err := WriteCatalog(sampleCatalog(), cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows

	assert.Equal(t, "name", records[0][0])
	assert.Equal(t, []string{"small", "t3.small", "2.0", "2", "1", "builder-small", "0.0208"}, records[1])
	assert.Equal(t, "xlarge", records[2][0])
}

func TestWriteCatalogJSON(t *testing.T) {
	cfg := &contract.Config{
		Output:     schema.JSONOut,
		Precision:  1,
		OutputFile: filepath.Join(t.TempDir(), "catalog.json"),
	}

	err := WriteCatalog(sampleCatalog(), cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "small", decoded[0]["name"])
	assert.Equal(t, float64(16), decoded[1]["memory_gb"])
}
