package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// GridCell is one block inside a weekly timetable grid.
type GridCell struct {
	Lines []string
	// Span is the number of consecutive columns the cell occupies
	// (multi-hour sessions render once with a wider cell).
	Span int
}

// Grid is a weekly timetable for one section: rows are days, columns are the
// standard slot labels. Cells are keyed by (day, column label).
type Grid struct {
	Title   string
	Days    []string
	Columns []string
	Lunch   string
	Cells   map[string]map[string]GridCell
}

// PDFExporter renders timetable grids and plain tables into PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderGrids renders one weekly grid per page in landscape orientation.
func (e *PDFExporter) RenderGrids(title string, grids []Grid) ([]byte, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("pdf requires at least one grid")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)

	for _, grid := range grids {
		pdf.AddPage()

		if title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 8, strings.ToUpper(title), "", 1, "C", false, 0, "")
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, grid.Title, "", 1, "C", false, 0, "")
		pdf.Ln(2)

		dayWidth := 28.0
		colWidth := (277.0 - dayWidth) / float64(len(grid.Columns))
		rowHeight := 24.0

		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(47, 79, 79)
		pdf.SetTextColor(245, 245, 245)
		pdf.CellFormat(dayWidth, 8, "Day", "1", 0, "C", true, 0, "")
		for _, col := range grid.Columns {
			label := col
			if col == grid.Lunch {
				label += " (LUNCH)"
			}
			pdf.CellFormat(colWidth, 8, label, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetTextColor(0, 0, 0)
		for _, day := range grid.Days {
			x := pdf.GetX()
			y := pdf.GetY()
			pdf.SetFont("Arial", "B", 8)
			pdf.CellFormat(dayWidth, rowHeight, day, "1", 0, "C", false, 0, "")

			pdf.SetFont("Arial", "", 7)
			skip := 0
			for i, col := range grid.Columns {
				cellX := x + dayWidth + float64(i)*colWidth
				if skip > 0 {
					skip--
					continue
				}
				if col == grid.Lunch {
					pdf.SetXY(cellX, y)
					pdf.CellFormat(colWidth, rowHeight, "LUNCH", "1", 0, "C", false, 0, "")
					continue
				}
				cell, ok := grid.Cells[day][col]
				span := 1
				if ok && cell.Span > 1 {
					span = cell.Span
					if span > len(grid.Columns)-i {
						span = len(grid.Columns) - i
					}
					skip = span - 1
				}
				pdf.SetXY(cellX, y)
				width := colWidth * float64(span)
				if !ok {
					pdf.CellFormat(width, rowHeight, "", "1", 0, "C", false, 0, "")
					continue
				}
				pdf.MultiCell(width, rowHeight/float64(maxInt(len(cell.Lines), 1)), strings.Join(cell.Lines, "\n"), "1", "C", false)
			}
			pdf.SetXY(x, y+rowHeight)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render grid pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
