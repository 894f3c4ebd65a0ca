package handler

import (
	"net/http"

	"redraft/internal/diff"
	"redraft/internal/domain"
	"redraft/internal/httputil"
)

// Rewrite re-triggers the rewrite for the session's current document. This
// is the only retry path after a failure; there is no automatic retry.
// POST /api/sessions/{id}/rewrite
func (h *SessionHandler) Rewrite(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := h.launchRewrite(sessionID); err != nil {
		handleError(w, err)
		return
	}

	snap, err := h.store.Get(sessionID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusAccepted, snap)
}

// diffResponse carries the word-level alignment between the extracted text
// and its rewrite.
type diffResponse struct {
	DocumentID string      `json:"document_id"`
	Spans      []diff.Span `json:"spans"`
}

// Diff computes the word-level diff between the extracted text and the
// current rewrite. Recomputed on every call; never stored.
// GET /api/sessions/{id}/diff
func (h *SessionHandler) Diff(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	if snap.Rewrite == nil {
		handleError(w, &domain.EmptyContentError{Message: "no rewrite available to compare"})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, diffResponse{
		DocumentID: snap.Rewrite.DocumentID,
		Spans:      diff.Spans(snap.ExtractedText, snap.Rewrite.Text),
	})
}

// Reject discards the current rewrite at the user's request. The extracted
// text and document are kept; a new rewrite can be triggered afterwards.
// POST /api/sessions/{id}/reject
func (h *SessionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.RejectRewrite(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, snap)
}
