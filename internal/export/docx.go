package export

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"redraft/internal/domain"
)

// serializeDocx packs content into a minimal Word document: one paragraph
// holding the full text as a single plain run. The source document's
// structure was already discarded during extraction, so there is nothing
// richer to reconstruct.
func serializeDocx(content string) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText(content)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, &domain.ExportError{
			Message: "failed to export as DOCX",
			Cause:   fmt.Errorf("pack docx: %w", err),
		}
	}
	return buf.Bytes(), nil
}
