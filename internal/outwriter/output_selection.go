package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// WriteSelection outputs a selection result, dispatching based on the output format configured.
func WriteSelection(result schema.SelectionResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeSelectionJSON(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeSelectionCSV(result, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeSelectionTable(result, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeSelectionJSON handles opening the file and calling the JSON writer.
func writeSelectionJSON(result schema.SelectionResult, cfg *contract.Config) error {
	return writeWithFile(cfg, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON")
}

// writeSelectionCSV handles opening the file and calling the CSV writer.
func writeSelectionCSV(result schema.SelectionResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"job",
		"class",
		"instance_type",
		"agent_label",
		"memory_gb",
		"cpu_count",
		"executor_slots",
		"hourly_usd",
		"cpu_percent",
		"predicted_memory_gb",
		"buffered_memory_gb",
		"time_minutes",
		"confidence",
		"method",
		"buffer_factor",
		"at_capacity",
		"estimated_cost_usd",
		"elapsed_ms",
	}
	return writeWithFile(cfg, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			rec := []string{
				cfg.JobName,
				result.Class.Name,
				result.Class.InstanceType,
				result.Class.AgentLabel,
				fmtFloat(result.Class.MemoryGB),
				fmt.Sprintf(intFmt, result.Class.CPUCount),
				fmt.Sprintf(intFmt, result.Class.ExecutorSlots),
				result.Class.HourlyUSD.StringFixed(4),
				fmtFloat(result.Prediction.CPUPercent),
				fmtFloat(result.Prediction.MemoryGB),
				fmtFloat(result.BufferedMemoryGB),
				fmtFloat(result.Prediction.TimeMinutes),
				contract.GetPlainConfidenceLabel(result.Prediction.Confidence),
				string(result.Prediction.Method),
				fmt.Sprintf("%.2f", result.BufferFactor),
				strconv.FormatBool(result.AtCapacity),
				result.EstimatedCostUSD.StringFixed(4),
				strconv.FormatInt(result.ElapsedMS, 10),
			}
			return csvWriter.Write(rec)
		})
	}, "Wrote CSV")
}

// writeSelectionTable generates and writes the human-readable selection summary.
func writeSelectionTable(result schema.SelectionResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "%sSelected instance class\n", emojiPrefix(cfg, "🎯")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Class", "Instance", "Memory (GB)", "CPUs", "Slots", "Agent Label", "USD/hr"}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	data := [][]string{{
		result.Class.Name,
		result.Class.InstanceType,
		fmtFloat(result.Class.MemoryGB),
		fmt.Sprintf(intFmt, result.Class.CPUCount),
		fmt.Sprintf(intFmt, result.Class.ExecutorSlots),
		result.Class.AgentLabel,
		result.Class.HourlyUSD.StringFixed(4),
	}}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	confidence := contract.GetPlainConfidenceLabel(result.Prediction.Confidence)
	if cfg.UseColors {
		confidence = contract.GetColorConfidenceLabel(result.Prediction.Confidence)
	}
	method := contract.GetMethodLabel(result.Prediction.Method, cfg.UseColors)

	if _, err := fmt.Fprintf(writer, "%sPrediction: cpu %s%%, memory %s GB, time %s min (confidence: %s, method: %s)\n",
		emojiPrefix(cfg, "📈"),
		fmtFloat(result.Prediction.CPUPercent),
		fmtFloat(result.Prediction.MemoryGB),
		fmtFloat(result.Prediction.TimeMinutes),
		confidence, method); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "%sBuffered memory: %s GB (factor %.2fx)\n",
		emojiPrefix(cfg, "🧮"),
		fmtFloat(result.BufferedMemoryGB), result.BufferFactor); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "%sEstimated cost: $%s (%s min at $%s/hr)\n",
		emojiPrefix(cfg, "💵"),
		result.EstimatedCostUSD.StringFixed(4),
		fmtFloat(result.Prediction.TimeMinutes),
		result.Class.HourlyUSD.StringFixed(4)); err != nil {
		return err
	}
	if result.AtCapacity {
		if _, err := fmt.Fprintf(writer, "%sDemand exceeds the largest class; the build may queue or swap\n",
			emojiPrefix(cfg, "⚠️")); err != nil {
			return err
		}
	}

	if len(result.Reasons) > 0 {
		if _, err := fmt.Fprintln(writer, "Reasons:"); err != nil {
			return err
		}
		for _, reason := range result.Reasons {
			if _, err := fmt.Fprintf(writer, "  - %s\n", reason); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(writer, "Selection completed in %v. History backend: %s\n", duration, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}
