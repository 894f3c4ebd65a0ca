package models

import "time"

// Format identifies a supported document type. The set is closed: adding a
// format means adding a constant here and a case to every switch over it.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatTXT  Format = "txt"
)

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatDocx, FormatTXT:
		return true
	}
	return false
}

// Extension returns the file extension for the format, with leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// UploadedDocument is one uploaded file. Immutable once created; a new
// upload replaces it wholesale.
type UploadedDocument struct {
	ID             string `json:"id"`
	OriginalName   string `json:"original_name"`
	DeclaredFormat Format `json:"declared_format"`
	SizeBytes      int64  `json:"size_bytes"`

	// RawBytes is never serialized; viewers get only metadata.
	RawBytes []byte `json:"-"`

	UploadedAt time.Time `json:"uploaded_at"`
}

// RewriteResult is the improved text returned by the rewrite service for a
// specific uploaded document.
type RewriteResult struct {
	DocumentID string    `json:"document_id"`
	Text       string    `json:"text"`
	Model      string    `json:"model"`
	Provider   string    `json:"provider"`
	CreatedAt  time.Time `json:"created_at"`
}
