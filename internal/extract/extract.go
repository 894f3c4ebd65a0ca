// Package extract converts uploaded document bytes into plain text.
//
// Supported formats:
//   - .pdf   — page-ordered text runs joined with single spaces per page
//   - .docx  — Microsoft Word (archive/zip → word/document.xml)
//   - .txt   — plain text (UTF-8 passthrough)
//
// Extraction is a pure function of (bytes, format): the same input always
// yields the same text. Malformed input surfaces as a domain error, never
// as a panic reaching the caller.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"redraft/internal/domain"
	"redraft/internal/domain/models"
)

// Extractor is the document extraction engine.
type Extractor struct {
	maxBytes int64
	logger   *slog.Logger
}

// New creates an Extractor. maxBytes caps the input size checked before any
// decoding starts; zero means no cap.
func New(maxBytes int64, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// DetectFormat returns the document format based on file extension.
// Unsupported extensions are rejected with an error naming the extension,
// before any state is touched.
func DetectFormat(filename string) (models.Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return models.FormatPDF, nil
	case ".docx":
		return models.FormatDocx, nil
	case ".txt":
		return models.FormatTXT, nil
	default:
		return "", &domain.UnsupportedFormatError{
			Message: fmt.Sprintf("unsupported file format: %s", ext),
		}
	}
}

// Extract parses document bytes according to their declared format and
// returns the plain text content.
func (e *Extractor) Extract(ctx context.Context, data []byte, format models.Format) (string, error) {
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return "", &domain.ValidationError{
			Message: fmt.Sprintf("file too large: %d bytes (max %d)", len(data), e.maxBytes),
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.logger.Debug("extracting document", "format", format, "size_bytes", len(data))

	switch format {
	case models.FormatPDF:
		return extractPDF(data)
	case models.FormatDocx:
		return extractDocx(data)
	case models.FormatTXT:
		return extractText(data)
	default:
		return "", &domain.UnsupportedFormatError{
			Message: fmt.Sprintf("unsupported format: %q", format),
		}
	}
}

// SupportedExtensions returns the accepted upload extensions.
func SupportedExtensions() []string {
	return []string{".docx", ".pdf", ".txt"}
}
