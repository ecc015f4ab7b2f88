package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders a week grid into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the grid.
func (e *CSVExporter) Render(grid WeekGrid) ([]byte, error) {
	if len(grid.Days) == 0 {
		return nil, fmt.Errorf("week grid has no day columns")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(grid.HeaderRow()); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range grid.Periods {
		if err := writer.Write(row.Record()); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
