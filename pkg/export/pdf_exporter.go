package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders week grids into a tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a portrait PDF document with an optional title and table body.
func (e *PDFExporter) Render(grid WeekGrid, title string) ([]byte, error) {
	return e.render(grid, title, "P", 190.0)
}

// RenderLandscape creates a landscape PDF, suited to wide weekly grids.
func (e *PDFExporter) RenderLandscape(grid WeekGrid, title string) ([]byte, error) {
	return e.render(grid, title, "L", 277.0)
}

func (e *PDFExporter) render(grid WeekGrid, title, orientation string, usableWidth float64) ([]byte, error) {
	if len(grid.Days) == 0 {
		return nil, fmt.Errorf("week grid has no day columns")
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	headers := grid.HeaderRow()
	pdf.SetFont("Arial", "B", 10)
	colWidth := usableWidth / float64(len(headers))
	for _, header := range headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range grid.Periods {
		for _, value := range row.Record() {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
