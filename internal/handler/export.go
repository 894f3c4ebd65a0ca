package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"redraft/internal/domain"
	"redraft/internal/domain/models"
	"redraft/internal/export"
	"redraft/internal/httputil"
)

// exportRequest is the body of an export call.
type exportRequest struct {
	Format string `json:"format"`
}

// Validate implements ozzo validation for the export request.
func (r exportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Format,
			validation.Required,
			validation.In("txt", "docx", "pdf"),
		),
	)
}

// Export serializes the current rewrite into the requested format and
// streams it as a download. The filename is derived from the original
// upload name.
// POST /api/sessions/{id}/export
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	if snap.Rewrite == nil {
		handleError(w, &domain.EmptyContentError{Message: "no valid content to export"})
		return
	}

	originalName := ""
	if snap.Document != nil {
		originalName = snap.Document.OriginalName
	}

	artifact, err := export.Export(snap.Rewrite.Text, models.Format(req.Format), originalName)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("export generated",
		"session_id", snap.ID,
		"format", req.Format,
		"filename", artifact.Filename,
		"size_bytes", len(artifact.Data))

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}
