package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeStream struct {
	connected bool
	last      time.Time
}

func (f *fakeStream) IsConnected() bool          { return f.connected }
func (f *fakeStream) LastMessageTime() time.Time { return f.last }

func decodeReady(t *testing.T, rec *httptest.ResponseRecorder) ReadyResponse {
	t.Helper()
	var resp ReadyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandleHealth(t *testing.T) {
	s := NewServer(Config{ServiceName: "trader", Version: "1.2.3", Commit: "abc123"})

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "trader" || resp.Version != "1.2.3" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandleReadyNotReady(t *testing.T) {
	s := NewServer(Config{ServiceName: "trader"})

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before SetReady, got %d", rec.Code)
	}
	resp := decodeReady(t, rec)
	if resp.Checks["service"] != "not_ready" {
		t.Errorf("expected service check not_ready, got %q", resp.Checks["service"])
	}
}

func TestHandleReadyWithDatabase(t *testing.T) {
	s := NewServer(Config{ServiceName: "trader", DB: &fakePinger{}})
	s.SetReady(true)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a healthy database, got %d", rec.Code)
	}

	s = NewServer(Config{ServiceName: "trader", DB: &fakePinger{err: errors.New("connection refused")}})
	s.SetReady(true)

	rec = httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with a failing database, got %d", rec.Code)
	}
	resp := decodeReady(t, rec)
	if resp.Checks["database"] == "ok" {
		t.Errorf("expected database check to report the failure, got %q", resp.Checks["database"])
	}
}

func TestHandleReadyStreamChecks(t *testing.T) {
	tests := []struct {
		name       string
		stream     *fakeStream
		wantCode   int
		wantPrefix string
	}{
		{"connected and fresh", &fakeStream{connected: true, last: time.Now()}, http.StatusOK, "ok"},
		{"disconnected", &fakeStream{connected: false}, http.StatusServiceUnavailable, "disconnected"},
		{"stale", &fakeStream{connected: true, last: time.Now().Add(-10 * time.Minute)}, http.StatusServiceUnavailable, "stale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{ServiceName: "trader", Stream: tt.stream})
			s.SetReady(true)

			rec := httptest.NewRecorder()
			s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			resp := decodeReady(t, rec)
			if got := resp.Checks["stream"]; len(got) < len(tt.wantPrefix) || got[:len(tt.wantPrefix)] != tt.wantPrefix {
				t.Errorf("expected stream check starting %q, got %q", tt.wantPrefix, got)
			}
		})
	}
}

func TestSetReady(t *testing.T) {
	s := NewServer(Config{ServiceName: "trader"})
	if s.IsReady() {
		t.Error("expected server to start not ready")
	}
	s.SetReady(true)
	if !s.IsReady() {
		t.Error("expected server ready after SetReady(true)")
	}
}
