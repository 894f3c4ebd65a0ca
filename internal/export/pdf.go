package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"redraft/internal/domain"
)

// Page geometry: text starts at a (10,10) top-left margin and wraps at a
// 180mm line width. MultiCell adds pages automatically, so long rewrites
// flow onto as many pages as the wrapped text needs.
const (
	pdfMarginLeft = 10
	pdfMarginTop  = 10
	pdfLineWidth  = 180
	pdfLineHeight = 5
	pdfFontSize   = 12
)

// serializePDF renders content word-wrapped into a portrait A4 document.
func serializePDF(content string) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", pdfFontSize)
	doc.AddPage()
	doc.SetXY(pdfMarginLeft, pdfMarginTop)

	// Core fonts are cp1252; translate so common accented characters
	// survive instead of rendering as garbage.
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.MultiCell(pdfLineWidth, pdfLineHeight, tr(content), "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, &domain.ExportError{
			Message: "failed to export as PDF",
			Cause:   fmt.Errorf("render pdf: %w", err),
		}
	}
	return buf.Bytes(), nil
}
