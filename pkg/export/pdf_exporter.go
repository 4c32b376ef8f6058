package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 277.0 // A4 landscape minus margins
	headerWidth = 28.0
	breakWidth  = 8.0
)

// Column is one time column of a timetable. Break columns are drawn shaded
// and never hold cells.
type Column struct {
	Label    string
	SubLabel string
	Break    bool
}

// Row is one day of a timetable. Cells align with the non-break columns.
type Row struct {
	Label string
	Cells []string
}

// Timetable is a single weekly grid rendered on its own page.
type Timetable struct {
	Title   string
	Columns []Column
	Rows    []Row
}

// PDFExporter renders weekly timetables into a landscape PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with one page per timetable.
func (e *PDFExporter) Render(title string, tables []Timetable) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("pdf requires at least one timetable")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, table := range tables {
		if len(table.Columns) == 0 {
			return nil, fmt.Errorf("timetable %q has no columns", table.Title)
		}
		pdf.AddPage()

		if title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 9, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		}
		if table.Title != "" {
			pdf.SetFont("Arial", "", 11)
			pdf.CellFormat(0, 7, tr(table.Title), "", 1, "C", false, 0, "")
		}
		pdf.Ln(3)

		slotWidth := slotColumnWidth(table.Columns)

		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(headerWidth, 10, "Day", "1", 0, "C", true, 0, "")
		for _, col := range table.Columns {
			if col.Break {
				pdf.CellFormat(breakWidth, 10, "", "1", 0, "C", true, 0, "")
				continue
			}
			x, y := pdf.GetXY()
			pdf.CellFormat(slotWidth, 5, tr(col.Label), "LTR", 2, "C", false, 0, "")
			pdf.CellFormat(slotWidth, 5, tr(col.SubLabel), "LBR", 0, "C", false, 0, "")
			pdf.SetXY(x+slotWidth, y)
		}
		pdf.Ln(10)

		pdf.SetFont("Arial", "", 7)
		for _, row := range table.Rows {
			pdf.SetFont("Arial", "B", 8)
			pdf.CellFormat(headerWidth, 14, tr(row.Label), "1", 0, "C", false, 0, "")
			pdf.SetFont("Arial", "", 7)
			idx := 0
			for _, col := range table.Columns {
				if col.Break {
					pdf.CellFormat(breakWidth, 14, "", "1", 0, "C", true, 0, "")
					continue
				}
				value := ""
				if idx < len(row.Cells) {
					value = row.Cells[idx]
				}
				idx++
				pdf.CellFormat(slotWidth, 14, tr(fitText(pdf, value, slotWidth-1)), "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func slotColumnWidth(columns []Column) float64 {
	slots, breaks := 0, 0
	for _, col := range columns {
		if col.Break {
			breaks++
		} else {
			slots++
		}
	}
	if slots == 0 {
		return 0
	}
	return (pageWidth - headerWidth - float64(breaks)*breakWidth) / float64(slots)
}

// fitText trims value with an ellipsis until it fits width.
func fitText(pdf *gofpdf.Fpdf, value string, width float64) string {
	if pdf.GetStringWidth(value) <= width {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}
