package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// WriteCatalog outputs the instance class catalog, dispatching based on the output format configured.
func WriteCatalog(classes []schema.InstanceClass, cfg *contract.Config) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeCatalogJSON(classes, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCatalogCSV(classes, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeCatalogTable(classes, cfg, fmtFloat, intFmt, w)
		}, "Wrote table")
	}
	return nil
}

// writeCatalogJSON handles opening the file and calling the JSON writer.
func writeCatalogJSON(classes []schema.InstanceClass, cfg *contract.Config) error {
	return writeWithFile(cfg, func(w io.Writer) error {
		return writeJSON(w, classes)
	}, "Wrote JSON")
}

// writeCatalogCSV handles opening the file and calling the CSV writer.
func writeCatalogCSV(classes []schema.InstanceClass, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"name",
		"instance_type",
		"memory_gb",
		"cpu_count",
		"executor_slots",
		"agent_label",
		"hourly_usd",
	}
	return writeWithFile(cfg, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, class := range classes {
				rec := []string{
					class.Name,
					class.InstanceType,
					fmtFloat(class.MemoryGB),
					fmt.Sprintf(intFmt, class.CPUCount),
					fmt.Sprintf(intFmt, class.ExecutorSlots),
					class.AgentLabel,
					class.HourlyUSD.StringFixed(4),
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// writeCatalogTable generates and writes the human-readable catalog table.
func writeCatalogTable(classes []schema.InstanceClass, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "%sInstance class catalog\n", emojiPrefix(cfg, "📦")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Class", "Instance", "Memory (GB)", "CPUs", "Slots", "Agent Label", "USD/hr"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, class := range classes {
		data = append(data, []string{
			class.Name,
			class.InstanceType,
			fmtFloat(class.MemoryGB),
			fmt.Sprintf(intFmt, class.CPUCount),
			fmt.Sprintf(intFmt, class.ExecutorSlots),
			class.AgentLabel,
			class.HourlyUSD.StringFixed(4),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d classes in ascending memory order\n", len(classes)); err != nil {
		return err
	}
	return nil
}
