package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a session or resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnsupportedFormatError indicates a file extension or declared format
	// outside the supported set. Message names the rejected extension.
	UnsupportedFormatError struct {
		Message string
	}

	// ExtractionError indicates the uploaded binary was malformed for its
	// declared format. The wrapped cause carries full decode detail.
	ExtractionError struct {
		Message string
		Cause   error
	}

	// RewriteError indicates the external rewrite service failed
	// (transport, authentication, or rate limit).
	RewriteError struct {
		Message string
		Cause   error
	}

	// ExportError indicates serialization or packing of an export
	// artifact failed.
	ExportError struct {
		Message string
		Cause   error
	}

	// EmptyContentError indicates there is no valid content to analyze
	// or export.
	EmptyContentError struct {
		Message string
	}

	// ConflictError indicates an operation that cannot run while another
	// is in flight for the same document.
	ConflictError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string          { return e.Message }
func (e *ValidationError) Error() string        { return e.Message }
func (e *UnsupportedFormatError) Error() string { return e.Message }
func (e *EmptyContentError) Error() string      { return e.Message }
func (e *ConflictError) Error() string          { return e.Message }

func (e *ExtractionError) Error() string { return e.Message }
func (e *ExtractionError) Unwrap() error { return e.Cause }

func (e *RewriteError) Error() string { return e.Message }
func (e *RewriteError) Unwrap() error { return e.Cause }

func (e *ExportError) Error() string { return e.Message }
func (e *ExportError) Unwrap() error { return e.Cause }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int          { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int        { return http.StatusBadRequest }
func (e *UnsupportedFormatError) StatusCode() int { return http.StatusBadRequest }
func (e *ExtractionError) StatusCode() int        { return http.StatusUnprocessableEntity }
func (e *RewriteError) StatusCode() int           { return http.StatusBadGateway }
func (e *ExportError) StatusCode() int            { return http.StatusInternalServerError }
func (e *EmptyContentError) StatusCode() int      { return http.StatusBadRequest }
func (e *ConflictError) StatusCode() int          { return http.StatusConflict }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtraction        = errors.New("extraction failed")
	ErrRewrite           = errors.New("rewrite failed")
	ErrExport            = errors.New("export failed")
	ErrEmptyContent      = errors.New("no valid content")
	ErrConflict          = errors.New("operation already in progress")
)

// Is allows errors.Is() to match each typed error against its sentinel.
func (e *NotFoundError) Is(target error) bool          { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool        { return target == ErrValidation }
func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }
func (e *ExtractionError) Is(target error) bool        { return target == ErrExtraction }
func (e *RewriteError) Is(target error) bool           { return target == ErrRewrite }
func (e *ExportError) Is(target error) bool            { return target == ErrExport }
func (e *EmptyContentError) Is(target error) bool      { return target == ErrEmptyContent }
func (e *ConflictError) Is(target error) bool          { return target == ErrConflict }
