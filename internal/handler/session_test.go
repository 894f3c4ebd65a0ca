package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"redraft/internal/config"
	"redraft/internal/extract"
	"redraft/internal/service/rewrite"
	"redraft/internal/service/rewrite/capabilities"
	"redraft/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	logger := slog.Default()
	cfg := &config.Config{
		DefaultModel:     "lorem-fast",
		RewriteMaxTokens: 50,
		RewriteTimeout:   5 * time.Second,
		MaxUploadBytes:   1 << 20,
		SessionTTL:       time.Hour,
	}

	registry, err := rewrite.SetupProviders(cfg, logger)
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	caps, err := capabilities.NewRegistry()
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}

	sessions := store.New(cfg.SessionTTL, logger)
	extractor := extract.New(cfg.MaxUploadBytes, logger)
	rewriteService := rewrite.NewService(registry, caps, cfg, logger)
	h := NewSessionHandler(sessions, extractor, rewriteService, cfg.MaxUploadBytes, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", h.Create)
	mux.HandleFunc("GET /api/sessions/{id}", h.Get)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.Delete)
	mux.HandleFunc("POST /api/sessions/{id}/document", h.Replace)
	mux.HandleFunc("POST /api/sessions/{id}/rewrite", h.Rewrite)
	mux.HandleFunc("GET /api/sessions/{id}/diff", h.Diff)
	mux.HandleFunc("POST /api/sessions/{id}/reject", h.Reject)
	mux.HandleFunc("POST /api/sessions/{id}/export", h.Export)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func uploadFile(t *testing.T, url, filename, content string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeSnapshot(t *testing.T, resp *http.Response) store.Snapshot {
	t.Helper()
	defer resp.Body.Close()

	var snap store.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

// waitForStatus polls the session until it leaves the analyzing state.
func waitForStatus(t *testing.T, baseURL, sessionID string) store.Snapshot {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/api/sessions/" + sessionID)
		if err != nil {
			t.Fatal(err)
		}
		snap := decodeSnapshot(t, resp)
		if snap.Status != store.StatusAnalyzing && snap.Status != store.StatusExtracting {
			return snap
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("session never settled")
	return store.Snapshot{}
}

func TestUploadTxtDocument(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadFile(t, srv.URL+"/api/sessions", "essay.txt", "Original essay text.")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	snap := decodeSnapshot(t, resp)

	if snap.ID == "" {
		t.Error("snapshot missing session id")
	}
	if snap.Document == nil {
		t.Fatal("snapshot missing document")
	}
	if snap.Document.OriginalName != "essay.txt" {
		t.Errorf("original name = %q", snap.Document.OriginalName)
	}
	if snap.ExtractedText != "Original essay text." {
		t.Errorf("extracted = %q", snap.ExtractedText)
	}
	if snap.Status != store.StatusAnalyzing {
		t.Errorf("status = %v, want analyzing right after upload", snap.Status)
	}
}

func TestUploadUnsupportedFormat(t *testing.T) {
	srv, sessions := newTestServer(t)

	resp := uploadFile(t, srv.URL+"/api/sessions", "data.csv", "a,b,c")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var problem map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&problem); err != nil {
		t.Fatal(err)
	}
	detail, _ := problem["detail"].(string)
	if !strings.Contains(detail, ".csv") {
		t.Errorf("error detail %q should name the rejected extension", detail)
	}

	// Rejected before any state was touched.
	if sessions.Len() != 0 {
		t.Errorf("no session should exist after a rejected upload, got %d", sessions.Len())
	}
}

func TestUploadWithoutFile(t *testing.T) {
	srv, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("note", "no file here")
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/sessions", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/sessions/does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRewriteDiffExportFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadFile(t, srv.URL+"/api/sessions", "essay.txt", "Some original words to improve.")
	snap := decodeSnapshot(t, resp)

	snap = waitForStatus(t, srv.URL, snap.ID)
	if snap.Status != store.StatusReady {
		t.Fatalf("status = %v, want ready (error: %s)", snap.Status, snap.Error)
	}
	if snap.Rewrite == nil || snap.Rewrite.Text == "" {
		t.Fatal("expected a rewrite result")
	}
	if snap.Rewrite.Provider != "lorem" {
		t.Errorf("provider = %q", snap.Rewrite.Provider)
	}
	if snap.Rewrite.DocumentID != snap.Document.ID {
		t.Error("rewrite must be tagged with the current document")
	}

	// Diff between extracted text and the rewrite.
	diffResp, err := http.Get(srv.URL + "/api/sessions/" + snap.ID + "/diff")
	if err != nil {
		t.Fatal(err)
	}
	defer diffResp.Body.Close()
	if diffResp.StatusCode != http.StatusOK {
		t.Fatalf("diff status = %d", diffResp.StatusCode)
	}
	var diffBody struct {
		DocumentID string `json:"document_id"`
		Spans      []struct {
			Text string `json:"text"`
			Kind string `json:"kind"`
		} `json:"spans"`
	}
	if err := json.NewDecoder(diffResp.Body).Decode(&diffBody); err != nil {
		t.Fatal(err)
	}
	if len(diffBody.Spans) == 0 {
		t.Error("expected diff spans")
	}

	// Export the rewrite as txt.
	exportResp, err := http.Post(
		srv.URL+"/api/sessions/"+snap.ID+"/export",
		"application/json",
		strings.NewReader(`{"format":"txt"}`),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer exportResp.Body.Close()
	if exportResp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", exportResp.StatusCode)
	}
	disposition := exportResp.Header.Get("Content-Disposition")
	if !strings.Contains(disposition, "essay-updated.txt") {
		t.Errorf("disposition = %q", disposition)
	}
}

func TestExportWithoutRewrite(t *testing.T) {
	srv, _ := newTestServer(t)

	// An empty document extracts to nothing, so no rewrite is launched
	// and there is nothing to export.
	resp := uploadFile(t, srv.URL+"/api/sessions", "empty.txt", "")
	snap := decodeSnapshot(t, resp)
	if snap.Status != store.StatusExtracted {
		t.Fatalf("status = %v, want extracted for an empty document", snap.Status)
	}

	exportResp, err := http.Post(
		srv.URL+"/api/sessions/"+snap.ID+"/export",
		"application/json",
		strings.NewReader(`{"format":"txt"}`),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer exportResp.Body.Close()
	if exportResp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a rewrite", exportResp.StatusCode)
	}
}

func TestExportInvalidFormat(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadFile(t, srv.URL+"/api/sessions", "essay.txt", "text")
	snap := decodeSnapshot(t, resp)

	for _, body := range []string{`{"format":"rtf"}`, `{}`, `not json`} {
		exportResp, err := http.Post(
			srv.URL+"/api/sessions/"+snap.ID+"/export",
			"application/json",
			strings.NewReader(body),
		)
		if err != nil {
			t.Fatal(err)
		}
		exportResp.Body.Close()
		if exportResp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, exportResp.StatusCode)
		}
	}
}

func TestRejectRewrite(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadFile(t, srv.URL+"/api/sessions", "essay.txt", "Some words to improve here.")
	snap := decodeSnapshot(t, resp)
	snap = waitForStatus(t, srv.URL, snap.ID)
	if snap.Status != store.StatusReady {
		t.Fatalf("status = %v, want ready", snap.Status)
	}

	rejectResp, err := http.Post(srv.URL+"/api/sessions/"+snap.ID+"/reject", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	snap = decodeSnapshot(t, rejectResp)
	if snap.Status != store.StatusRejected {
		t.Errorf("status = %v, want rejected", snap.Status)
	}
	if snap.Rewrite != nil {
		t.Error("rewrite must be cleared after reject")
	}
}

func TestReplaceDocumentSupersedesRewrite(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadFile(t, srv.URL+"/api/sessions", "first.txt", "First document words.")
	snap := decodeSnapshot(t, resp)
	sessionID := snap.ID
	firstDocID := snap.Document.ID

	snap = waitForStatus(t, srv.URL, sessionID)
	if snap.Status != store.StatusReady {
		t.Fatalf("status = %v, want ready", snap.Status)
	}

	resp = uploadFile(t, srv.URL+"/api/sessions/"+sessionID+"/document", "second.txt", "Second document words.")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace status = %d", resp.StatusCode)
	}
	snap = decodeSnapshot(t, resp)
	if snap.Document.ID == firstDocID {
		t.Error("replace must produce a new document id")
	}
	if snap.Rewrite != nil {
		t.Error("prior rewrite must be invalidated by a new upload")
	}
	if snap.ExtractedText != "Second document words." {
		t.Errorf("extracted = %q", snap.ExtractedText)
	}

	snap = waitForStatus(t, srv.URL, sessionID)
	if snap.Status != store.StatusReady {
		t.Fatalf("status = %v, want ready after replace", snap.Status)
	}
	if snap.Rewrite.DocumentID != snap.Document.ID {
		t.Error("new rewrite must be tagged with the new document")
	}
}

func TestDeleteSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadFile(t, srv.URL+"/api/sessions", "essay.txt", "text")
	snap := decodeSnapshot(t, resp)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/sessions/"+snap.ID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", delResp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/api/sessions/" + snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 after delete", getResp.StatusCode)
	}
}
