package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Week grids are wide, so pages are landscape A4 with a narrow fixed
// column for the day label.
const (
	pdfPageWidth    = 297.0
	pdfMargin       = 10.0
	pdfDayColWidth  = 32.0
	pdfHeaderHeight = 8.0
	pdfRowHeight    = 7.0
)

// PDFExporter renders grid datasets into a printable weekly table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape PDF with a title line and one bordered cell
// per grid position.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, 15, pdfMargin)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	widths := columnWidths(data.Headers)

	pdf.SetFont("Arial", "B", 10)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], pdfHeaderHeight, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			align := "C"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], pdfRowHeight, row[header], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths pins the first (day) column and splits the rest of the
// printable width evenly across the period columns.
func columnWidths(headers []string) []float64 {
	usable := pdfPageWidth - 2*pdfMargin
	widths := make([]float64, len(headers))
	if len(headers) == 1 {
		widths[0] = usable
		return widths
	}
	widths[0] = pdfDayColWidth
	periodWidth := (usable - pdfDayColWidth) / float64(len(headers)-1)
	for i := 1; i < len(headers); i++ {
		widths[i] = periodWidth
	}
	return widths
}
