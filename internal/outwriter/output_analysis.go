package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// WriteAnalysis outputs a dry-run analysis, dispatching based on the output format configured.
// The table form shows the detected signals with their detection status and
// the assembled feature vector; json carries the full analysis document.
func WriteAnalysis(output *schema.AnalysisOutput, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeAnalysisJSON(output, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeAnalysisCSV(output, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeAnalysisTable(output, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeAnalysisJSON handles opening the file and calling the JSON writer.
func writeAnalysisJSON(output *schema.AnalysisOutput, cfg *contract.Config) error {
	return writeWithFile(cfg, func(w io.Writer) error {
		return writeJSON(w, output)
	}, "Wrote JSON")
}

// writeAnalysisCSV writes the assembled vector as feature,value rows. This is
// the form training pipelines ingest directly.
func writeAnalysisCSV(output *schema.AnalysisOutput, cfg *contract.Config) error {
	return writeWithFile(cfg, func(w io.Writer) error {
		return writeCSVWithHeader(w, []string{"feature", "value"}, func(csvWriter *csv.Writer) error {
			values := output.Vector.OrderedValues()
			for i, name := range schema.FeatureColumns {
				rec := []string{name, strconv.FormatFloat(values[i], 'f', -1, 64)}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// analysisSignal is one detected input with its detection status.
type analysisSignal struct {
	name  string
	value string
}

// collectSignals flattens the analysis into the rows of the signal table,
// in the order users scan them: change shape first, then project shape.
func collectSignals(output *schema.AnalysisOutput, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) []analysisSignal {
	maxValueWidth := getMaxTableValueWidth(cfg)
	pipeline := fmt.Sprintf("%d stages (%d parallel)",
		output.Project.Pipeline.StagesCount, output.Project.Pipeline.ParallelStages)

	return []analysisSignal{
		{"branch_name", contract.TruncatePath(output.Metrics.BranchName, maxValueWidth)},
		{"files_changed", fmt.Sprintf(intFmt, output.Metrics.FilesChanged)},
		{"lines_added", fmt.Sprintf(intFmt, output.Metrics.LinesAdded)},
		{"lines_deleted", fmt.Sprintf(intFmt, output.Metrics.LinesDeleted)},
		{"deps_changed", fmt.Sprintf(intFmt, output.Metrics.DepsChanged)},
		{"repo_size_mb", fmtFloat(output.Project.RepoSizeMB)},
		{"dependency_count", fmt.Sprintf(intFmt, output.Project.DependencyCount)},
		{"pipeline_structure", pipeline},
	}
}

// writeAnalysisTable generates and writes the human-readable analysis report.
func writeAnalysisTable(output *schema.AnalysisOutput, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "%sProject: %s | build: %s | environment: %s | hour: %d\n",
		emojiPrefix(cfg, "📦"),
		output.Project.ProjectType, output.BuildType, output.Environment, output.HourOfDay); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "%sCache: first build %s, cache available %s, clean build %s\n",
		emojiPrefix(cfg, "🗃"),
		formatYesNo(output.Cache.IsFirstBuild),
		formatYesNo(output.Cache.CacheAvailable),
		formatYesNo(output.Cache.IsCleanBuild)); err != nil {
		return err
	}

	if err := writeSignalTable(output, cfg, fmtFloat, intFmt, writer); err != nil {
		return err
	}
	if err := writeVectorTable(output.Vector, writer); err != nil {
		return err
	}

	if defaulted := defaultedFields(output.Report); len(defaulted) > 0 {
		if _, err := fmt.Fprintf(writer, "%sDefaulted: %s\n",
			emojiPrefix(cfg, "⚠️"), strings.Join(defaulted, ", ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v. Feature schema v%d with %d features\n",
		duration, schema.FeatureSchemaVersion, schema.FeatureCount); err != nil {
		return err
	}
	return nil
}

// writeSignalTable renders the detected signals with their detection status.
func writeSignalTable(output *schema.AnalysisOutput, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Signal", "Value", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, sig := range collectSignals(output, cfg, fmtFloat, intFmt) {
		status := output.Report.Status(sig.name)
		data = append(data, []string{sig.name, sig.value, statusLabel(status, cfg.UseColors)})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeVectorTable renders the assembled feature vector in model order.
func writeVectorTable(vector schema.FeatureVector, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"#", "Feature", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	values := vector.OrderedValues()
	var data [][]string
	for i, name := range schema.FeatureColumns {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			name,
			strconv.FormatFloat(values[i], 'f', -1, 64),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// statusLabel renders a detection status, colored when requested. Defaulted
// signals get the medium (yellow) treatment so they stand out in the table.
func statusLabel(status schema.DetectionStatus, colored bool) string {
	text := string(status)
	if colored && status == schema.DefaultedStatus {
		return contract.MediumColor.Sprint(text)
	}
	return text
}

// defaultedFields lists the unique names of signals that fell back to
// defaults, preserving detection order.
func defaultedFields(report schema.DetectionReport) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, f := range report.Failures {
		if _, ok := seen[f.Field]; ok {
			continue
		}
		seen[f.Field] = struct{}{}
		names = append(names, f.Field)
	}
	return names
}
