package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"redraft/internal/config"
	"redraft/internal/domain/models"
	"redraft/internal/extract"
	"redraft/internal/httputil"
	"redraft/internal/service/rewrite"
	"redraft/internal/store"
)

// SessionHandler owns the session lifecycle: upload, snapshot, replace,
// delete. A rewrite is launched automatically after every successful upload.
type SessionHandler struct {
	store     *store.Store
	extractor *extract.Extractor
	rewrites  *rewrite.Service
	maxBytes  int64
	logger    *slog.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(st *store.Store, ex *extract.Extractor, rw *rewrite.Service, maxBytes int64, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:     st,
		extractor: ex,
		rewrites:  rw,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// Create handles a new document upload.
// POST /api/sessions (multipart, "file" field)
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.processUpload(w, r, "", http.StatusCreated)
}

// Replace uploads a new document into an existing session. All state derived
// from the previous document is superseded.
// POST /api/sessions/{id}/document
func (h *SessionHandler) Replace(w http.ResponseWriter, r *http.Request) {
	h.processUpload(w, r, r.PathValue("id"), http.StatusOK)
}

// processUpload handles common upload logic for create and replace. The
// file extension is validated before any session state changes, so a
// rejected format leaves the previous document fully usable.
func (h *SessionHandler) processUpload(w http.ResponseWriter, r *http.Request, sessionID string, successStatus int) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if len(header.Filename) > config.MaxFilenameLength {
		httputil.RespondError(w, http.StatusBadRequest, "filename too long")
		return
	}

	format, err := extract.DetectFormat(header.Filename)
	if err != nil {
		handleError(w, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	sessionID, err = h.store.StartUpload(sessionID)
	if err != nil {
		handleError(w, err)
		return
	}

	text, err := h.extractor.Extract(r.Context(), data, format)
	if err != nil {
		h.logger.Warn("extraction failed",
			"session_id", sessionID,
			"filename", header.Filename,
			"format", format,
			"error", err)
		if failErr := h.store.UploadFailed(sessionID, err); failErr != nil {
			handleError(w, failErr)
			return
		}
		handleError(w, err)
		return
	}

	doc := &models.UploadedDocument{
		ID:             uuid.NewString(),
		OriginalName:   header.Filename,
		DeclaredFormat: format,
		SizeBytes:      int64(len(data)),
		RawBytes:       data,
		UploadedAt:     time.Now(),
	}

	if _, err := h.store.UploadSucceeded(sessionID, doc, text); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("document uploaded",
		"session_id", sessionID,
		"document_id", doc.ID,
		"filename", doc.OriginalName,
		"format", format,
		"size_bytes", doc.SizeBytes,
		"extracted_chars", len(text))

	// Kick off the rewrite immediately; the snapshot below reports it as
	// analyzing. Documents with no extractable text stay in extracted.
	if text != "" {
		if err := h.launchRewrite(sessionID); err != nil {
			h.logger.Warn("automatic rewrite not started", "session_id", sessionID, "error", err)
		}
	}

	snap, err := h.store.Get(sessionID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, successStatus, snap)
}

// launchRewrite claims the session's rewrite slot and runs the provider call
// in the background. The goroutine is tagged with the document ID it was
// issued for; the store discards its result if a newer upload replaced the
// document in the meantime.
func (h *SessionHandler) launchRewrite(sessionID string) error {
	docID, text, err := h.store.StartRewrite(sessionID)
	if err != nil {
		return err
	}

	go func() {
		result, err := h.rewrites.Rewrite(context.Background(), text)
		if err != nil {
			h.logger.Warn("rewrite failed", "session_id", sessionID, "document_id", docID, "error", err)
			h.store.FailRewrite(sessionID, docID, err)
			return
		}
		h.store.CompleteRewrite(sessionID, docID, &models.RewriteResult{
			DocumentID: docID,
			Text:       result.Text,
			Model:      result.Model,
			Provider:   result.Provider,
			CreatedAt:  time.Now(),
		})
	}()
	return nil
}

// Get returns the session snapshot.
// GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, snap)
}

// Delete discards the session and everything in it.
// DELETE /api/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
