// Package store holds per-document session state in memory. Nothing here
// survives process restart: a session lives exactly as long as the document
// the user is working on, plus an idle TTL.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"redraft/internal/domain"
	"redraft/internal/domain/models"
)

// Status is the lifecycle state of a session.
type Status string

const (
	// StatusExtracting: an upload is in progress; prior derived state has
	// already been invalidated.
	StatusExtracting Status = "extracting"
	// StatusExtracted: extraction finished, no rewrite started yet.
	StatusExtracted Status = "extracted"
	// StatusAnalyzing: a rewrite call is in flight for the current document.
	StatusAnalyzing Status = "analyzing"
	// StatusReady: a rewrite result is available.
	StatusReady Status = "ready"
	// StatusUploadFailed: extraction or validation of the upload failed.
	StatusUploadFailed Status = "upload_failed"
	// StatusRewriteFailed: the rewrite call failed; a previously successful
	// rewrite, if any, is retained.
	StatusRewriteFailed Status = "rewrite_failed"
	// StatusRejected: the user discarded the rewrite.
	StatusRejected Status = "rejected"
)

// ErrStaleResult marks a rewrite completion that arrived for a document the
// session no longer holds. The result is discarded, never applied.
var ErrStaleResult = errors.New("stale rewrite result discarded")

// session is the single mutable record per document session. All access
// goes through Store methods under the lock.
type session struct {
	id        string
	doc       *models.UploadedDocument
	extracted string
	rewrite   *models.RewriteResult
	status    Status
	lastError string
	updatedAt time.Time
}

// Snapshot is an immutable copy of session state handed to readers. Raw
// document bytes are never included.
type Snapshot struct {
	ID            string                   `json:"id"`
	Document      *models.UploadedDocument `json:"document,omitempty"`
	ExtractedText string                   `json:"extracted_text,omitempty"`
	Rewrite       *models.RewriteResult    `json:"rewrite,omitempty"`
	Status        Status                   `json:"status"`
	Error         string                   `json:"error,omitempty"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// Store is the in-memory session registry. One writer path (the upload and
// rewrite handlers), many readers.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	logger   *slog.Logger
}

// New creates a Store. Sessions idle longer than ttl are evicted by Run.
func New(ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		logger:   logger,
	}
}

// StartUpload begins a new upload. With an empty sessionID it creates a new
// session; otherwise it reuses the existing one, invalidating the previous
// document and everything derived from it before extraction begins.
func (s *Store) StartUpload(sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		id := uuid.NewString()
		s.sessions[id] = &session{
			id:        id,
			status:    StatusExtracting,
			updatedAt: time.Now(),
		}
		return id, nil
	}

	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", sessionID)}
	}

	// Replace wholesale: stale rewrite completions for the old document
	// are rejected later by document ID comparison.
	sess.doc = nil
	sess.extracted = ""
	sess.rewrite = nil
	sess.lastError = ""
	sess.status = StatusExtracting
	sess.updatedAt = time.Now()
	return sess.id, nil
}

// UploadSucceeded records the new document and its extracted text.
func (s *Store) UploadSucceeded(sessionID string, doc *models.UploadedDocument, extracted string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Snapshot{}, &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", sessionID)}
	}

	sess.doc = doc
	sess.extracted = extracted
	sess.rewrite = nil
	sess.lastError = ""
	sess.status = StatusExtracted
	sess.updatedAt = time.Now()
	return sess.snapshot(), nil
}

// UploadFailed records an upload or extraction failure.
func (s *Store) UploadFailed(sessionID string, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", sessionID)}
	}

	sess.doc = nil
	sess.extracted = ""
	sess.rewrite = nil
	sess.status = StatusUploadFailed
	sess.lastError = cause.Error()
	sess.updatedAt = time.Now()
	return nil
}

// StartRewrite claims the rewrite slot for the session's current document
// and returns the document ID and text the call should be issued for.
// Refuses while another call is pending for the same document.
func (s *Store) StartRewrite(sessionID string) (docID, text string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", "", &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", sessionID)}
	}
	if sess.doc == nil {
		return "", "", &domain.EmptyContentError{Message: "no valid content to analyze"}
	}
	if sess.status == StatusAnalyzing {
		return "", "", &domain.ConflictError{Message: "a rewrite is already in progress for this document"}
	}

	sess.status = StatusAnalyzing
	sess.updatedAt = time.Now()
	return sess.doc.ID, sess.extracted, nil
}

// CompleteRewrite applies a rewrite result if and only if the session still
// holds the document the call was issued for; anything else is stale and
// discarded.
func (s *Store) CompleteRewrite(sessionID, docID string, result *models.RewriteResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", sessionID)}
	}
	if sess.doc == nil || sess.doc.ID != docID {
		s.logger.Warn("discarding stale rewrite result",
			"session_id", sessionID,
			"stale_document_id", docID,
		)
		return ErrStaleResult
	}

	sess.rewrite = result
	sess.lastError = ""
	sess.status = StatusReady
	sess.updatedAt = time.Now()
	return nil
}

// FailRewrite records a rewrite failure for the given document. Stale
// failures are discarded like stale results, and a previously successful
// rewrite is left intact.
func (s *Store) FailRewrite(sessionID, docID string, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", sessionID)}
	}
	if sess.doc == nil || sess.doc.ID != docID {
		s.logger.Warn("discarding stale rewrite failure",
			"session_id", sessionID,
			"stale_document_id", docID,
		)
		return ErrStaleResult
	}

	sess.status = StatusRewriteFailed
	sess.lastError = cause.Error()
	sess.updatedAt = time.Now()
	return nil
}

// RejectRewrite clears the current rewrite at the user's request.
func (s *Store) RejectRewrite(sessionID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Snapshot{}, &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", sessionID)}
	}

	sess.rewrite = nil
	sess.status = StatusRejected
	sess.updatedAt = time.Now()
	return sess.snapshot(), nil
}

// Get returns a read-only snapshot of the session.
func (s *Store) Get(sessionID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Snapshot{}, &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", sessionID)}
	}
	return sess.snapshot(), nil
}

// Delete discards the session entirely.
func (s *Store) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", sessionID)}
	}
	delete(s.sessions, sessionID)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run evicts idle sessions until ctx is cancelled. A server cannot rely on
// tab lifetime the way a page can, so idle sessions are garbage collected.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.prune(now)
		}
	}
}

func (s *Store) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if now.Sub(sess.updatedAt) > s.ttl {
			delete(s.sessions, id)
			s.logger.Debug("evicted idle session", "session_id", id)
		}
	}
}

// snapshot copies session state for readers; raw bytes stay behind.
func (sess *session) snapshot() Snapshot {
	snap := Snapshot{
		ID:            sess.id,
		ExtractedText: sess.extracted,
		Rewrite:       sess.rewrite,
		Status:        sess.status,
		Error:         sess.lastError,
		UpdatedAt:     sess.updatedAt,
	}
	if sess.doc != nil {
		doc := *sess.doc
		doc.RawBytes = nil
		snap.Document = &doc
	}
	return snap
}
