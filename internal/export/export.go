// Package export serializes rewritten text into downloadable artifacts.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"redraft/internal/domain"
	"redraft/internal/domain/models"
)

// DefaultBaseName is used when the upload's original name is unknown or has
// no recognizable extension.
const DefaultBaseName = "updated-text"

// Artifact is a transient export result; it is not retained after the
// download response is written.
type Artifact struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Export serializes content into the target format and derives the download
// filename from the original upload name.
func Export(content string, format models.Format, originalName string) (*Artifact, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &domain.EmptyContentError{Message: "no valid content to export"}
	}

	var data []byte
	var contentType string
	var err error

	switch format {
	case models.FormatTXT:
		data = []byte(content)
		contentType = "text/plain; charset=utf-8"
	case models.FormatDocx:
		data, err = serializeDocx(content)
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case models.FormatPDF:
		data, err = serializePDF(content)
		contentType = "application/pdf"
	default:
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unsupported export format: %q", format),
		}
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &domain.ExportError{
			Message: fmt.Sprintf("failed to export as %s", strings.ToUpper(string(format))),
			Cause:   fmt.Errorf("serializer produced an empty artifact"),
		}
	}

	return &Artifact{
		Data:        data,
		Filename:    DeriveFilename(originalName, format),
		ContentType: contentType,
	}, nil
}

// DeriveFilename builds the download name: an original name with a
// recognizable extension gets it replaced by "-updated.<ext>"; anything
// else falls back to the fixed default base name.
func DeriveFilename(originalName string, format models.Format) string {
	ext := filepath.Ext(originalName)
	if ext == "" || ext == originalName {
		return DefaultBaseName + format.Extension()
	}
	base := strings.TrimSuffix(originalName, ext)
	return base + "-updated" + format.Extension()
}
