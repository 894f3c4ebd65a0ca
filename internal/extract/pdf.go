package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"redraft/internal/domain"
)

// extractPDF decodes a multi-page PDF in memory. Pages are visited strictly
// in ascending order from 1, pages are separated by a newline, and
// aggregation is append-only: no reordering, no deduplication.
func extractPDF(data []byte) (text string, err error) {
	// The pdf library panics on some malformed cross-reference tables;
	// convert that into an extraction error so the caller never sees a fault.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &domain.ExtractionError{
				Message: "failed to extract text from PDF",
				Cause:   fmt.Errorf("pdf decode panic: %v", r),
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &domain.ExtractionError{
			Message: "failed to extract text from PDF",
			Cause:   fmt.Errorf("pdf open: %w", err),
		}
	}

	// Font cache shared across pages keeps repeated font lookups cheap.
	fonts := make(map[string]*pdf.Font)

	var sb strings.Builder
	for pageNr := 1; pageNr <= reader.NumPage(); pageNr++ {
		page := reader.Page(pageNr)
		if page.V.IsNull() {
			continue
		}

		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}

		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			// Pages without extractable text (image-only scans) are
			// skipped rather than failing the whole document.
			continue
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(normalizePageText(pageText))
	}

	return sb.String(), nil
}

// normalizePageText collapses intra-page whitespace so text runs end up
// joined by single spaces, matching how the viewers render a page.
func normalizePageText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
