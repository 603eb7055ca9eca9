package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// WriteHistoryStatus outputs the history store status, dispatching based on the output format configured.
func WriteHistoryStatus(status schema.HistoryStatus, cfg *contract.Config) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeHistoryStatusJSON(status, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeHistoryStatusCSV(status, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeHistoryStatusTable(status, cfg, w)
		}, "Wrote table")
	}
	return nil
}

// writeHistoryStatusJSON handles opening the file and calling the JSON writer.
func writeHistoryStatusJSON(status schema.HistoryStatus, cfg *contract.Config) error {
	return writeWithFile(cfg, func(w io.Writer) error {
		return writeJSON(w, status)
	}, "Wrote JSON")
}

// writeHistoryStatusCSV handles opening the file and calling the CSV writer.
func writeHistoryStatusCSV(status schema.HistoryStatus, cfg *contract.Config) error {
	header := []string{
		"backend",
		"connected",
		"total_runs",
		"last_run_id",
		"first_run_time",
		"last_run_time",
		"job_count",
		"table_sizes",
	}
	return writeWithFile(cfg, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			rec := []string{
				status.Backend,
				strconv.FormatBool(status.Connected),
				strconv.Itoa(status.TotalRuns),
				strconv.FormatInt(status.LastRunID, 10),
				formatRunTime(status.FirstRunTime),
				formatRunTime(status.LastRunTime),
				strconv.Itoa(status.JobCount),
				strings.Join(tableSizePairs(status.TableSizes), "|"),
			}
			return csvWriter.Write(rec)
		})
	}, "Wrote CSV")
}

// writeHistoryStatusTable generates and writes the human-readable status table.
func writeHistoryStatusTable(status schema.HistoryStatus, cfg *contract.Config, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "%sBuild history status\n", emojiPrefix(cfg, "🗄")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Field", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{"backend", status.Backend},
		{"connected", formatYesNo(status.Connected)},
		{"total runs", strconv.Itoa(status.TotalRuns)},
		{"last run id", strconv.FormatInt(status.LastRunID, 10)},
		{"first run", formatRunTime(status.FirstRunTime)},
		{"last run", formatRunTime(status.LastRunTime)},
		{"jobs tracked", strconv.Itoa(status.JobCount)},
	}
	for _, pair := range tableSizePairs(status.TableSizes) {
		name, count, _ := strings.Cut(pair, "=")
		data = append(data, []string{"rows in " + name, count})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// formatRunTime renders a run timestamp, or n/a when no run exists.
func formatRunTime(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format(contract.DateTimeFormat)
}

// tableSizePairs renders the per-table row counts as name=count pairs in
// stable alphabetical order.
func tableSizePairs(sizes map[string]int64) []string {
	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%d", name, sizes[name]))
	}
	return pairs
}
