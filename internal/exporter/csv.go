package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"findash/internal/dashboard"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes a CSV document to w with the given options
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// tableRecords turns a view table into CSV rows of unformatted numbers,
// company first.
func tableRecords(t *dashboard.Table) [][]string {
	records := make([][]string, 0, len(t.Values))
	for i, values := range t.Values {
		row := make([]string, 0, len(values)+1)
		row = append(row, t.Companies[i])
		for _, v := range values {
			row = append(row, formatFloat(v))
		}
		records = append(records, row)
	}
	return records
}

func writeCSVReport(w io.Writer, r *Report) error {
	return WriteCSV(w, WriteOptions{
		Headers:   r.Table.Columns,
		Records:   tableRecords(r.Table),
		BOMPrefix: true,
	})
}
