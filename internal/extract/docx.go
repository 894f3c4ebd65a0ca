package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"redraft/internal/domain"
)

// extractDocx reads word/document.xml out of the DOCX zip package and
// streams its markup, discarding structure and formatting: text runs are
// concatenated per paragraph and paragraphs are joined with blank lines.
func extractDocx(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &domain.ExtractionError{
			Message: "failed to extract text from DOCX",
			Cause:   fmt.Errorf("open zip: %w", err),
		}
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", &domain.ExtractionError{
			Message: "failed to extract text from DOCX",
			Cause:   fmt.Errorf("word/document.xml not found in archive"),
		}
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", &domain.ExtractionError{
			Message: "failed to extract text from DOCX",
			Cause:   fmt.Errorf("open document.xml: %w", err),
		}
	}
	defer rc.Close()

	text, err := decodeDocumentXML(rc)
	if err != nil {
		return "", &domain.ExtractionError{
			Message: "failed to extract text from DOCX",
			Cause:   err,
		}
	}
	return text, nil
}

// decodeDocumentXML walks the WordprocessingML token stream collecting the
// character data of w:t runs, paragraph by paragraph.
func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	var inParagraph, inRunText bool

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inRunText = inParagraph
			case "tab":
				if inParagraph {
					current.WriteByte('\t')
				}
			case "br":
				if inParagraph {
					current.WriteByte('\n')
				}
			}

		case xml.CharData:
			if inRunText {
				current.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRunText = false
			case "p":
				if inParagraph {
					inParagraph = false
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			}
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}
