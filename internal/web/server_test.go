package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NaturalHistoryMuseum/KEParser/internal/progress"
)

// stubSource fakes a running parser's counters.
type stubSource struct {
	lines, records, estimated int64
}

func (s *stubSource) LineCount() int64      { return s.lines }
func (s *stubSource) RecordCount() int64    { return s.records }
func (s *stubSource) EstimatedLines() int64 { return s.estimated }

func TestHandleProgress(t *testing.T) {
	src := &stubSource{lines: 500, records: 42, estimated: 1000}
	srv := NewServer(progress.NewReporter(src), ":0")

	req := httptest.NewRequest(http.MethodGet, "/progress", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var snap progress.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if snap.Lines != 500 || snap.Records != 42 || snap.EstimatedLines != 1000 {
		t.Errorf("snapshot = %+v, want counters 500/42/1000", snap)
	}
	if snap.Percent != 50 {
		t.Errorf("Percent = %v, want 50", snap.Percent)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(progress.NewReporter(&stubSource{}), ":0")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", rr.Body.String())
	}
}
