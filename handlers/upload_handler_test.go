package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUploadWithoutConfiguredStorage(t *testing.T) {
	h := NewUploadHandler(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", strings.NewReader(""))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not available") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
