package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteProblemShape(t *testing.T) {
	rr := httptest.NewRecorder()
	writeProblem(rr, http.StatusBadRequest, "Invalid request", "jobs required", "/v1/solve")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type: got %q", ct)
	}
	var body problemBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Type != "about:blank" || body.Title != "Invalid request" || body.Status != 400 {
		t.Fatalf("bad body: %+v", body)
	}
	if body.Detail != "jobs required" || body.Instance != "/v1/solve" {
		t.Fatalf("bad body: %+v", body)
	}
}

func TestWriteJSONContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, map[string]string{"status": "ok"})
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type: got %q", ct)
	}
}
