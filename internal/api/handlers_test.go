package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"qrscan-go/internal/config"
	"qrscan-go/internal/qr"
	"qrscan-go/internal/scan"
	"qrscan-go/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *scan.Store) {
	t.Helper()
	store := scan.NewStore(testutil.NewTestSlot(), "history", scan.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	srv := NewServer(store, config.GenerateConfig{Size: 256, Level: "medium"}, scan.NewNopLogger())
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func decodeRecords(t *testing.T, body *bytes.Buffer) []scan.Record {
	t.Helper()
	var records []scan.Record
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return records
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Body.String() != "OK\n" {
		t.Errorf("body = %q, want %q", rr.Body.String(), "OK\n")
	}
}

func TestHandleHistoryList(t *testing.T) {
	srv, store := newTestServer(t)
	for _, content := range []string{"https://example.com/a", "mailto:b@example.com", "plain note"} {
		if _, _, err := store.Add(content); err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}

	t.Run("returns all newest first", func(t *testing.T) {
		rr := doRequest(t, srv, "GET", "/api/history", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}
		records := decodeRecords(t, rr.Body)
		if len(records) != 3 {
			t.Fatalf("got %d records, want 3", len(records))
		}
		if records[0].Content != "plain note" {
			t.Errorf("records[0].Content = %q, want %q", records[0].Content, "plain note")
		}
	})

	t.Run("limit truncates", func(t *testing.T) {
		rr := doRequest(t, srv, "GET", "/api/history?limit=2", nil)
		if records := decodeRecords(t, rr.Body); len(records) != 2 {
			t.Errorf("got %d records, want 2", len(records))
		}
	})

	t.Run("query filters by content", func(t *testing.T) {
		rr := doRequest(t, srv, "GET", "/api/history?q=example", nil)
		records := decodeRecords(t, rr.Body)
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		for _, rec := range records {
			if !strings.Contains(rec.Content, "example") {
				t.Errorf("matched %q, does not contain %q", rec.Content, "example")
			}
		}
	})

	t.Run("bad limit rejected", func(t *testing.T) {
		for _, limit := range []string{"abc", "-1"} {
			rr := doRequest(t, srv, "GET", "/api/history?limit="+limit, nil)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("limit=%s: status = %d, want %d", limit, rr.Code, http.StatusBadRequest)
			}
		}
	})
}

func TestHandleHistoryList_EmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, "GET", "/api/history", nil)
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %q, want %q", got, "[]")
	}
}

func TestHandleHistoryAdd(t *testing.T) {
	srv, store := newTestServer(t)

	body := strings.NewReader(`{"content": "https://example.com"}`)
	rr := doRequest(t, srv, "POST", "/api/history", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
	}

	var rec scan.Record
	if err := json.NewDecoder(rr.Body).Decode(&rec); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if rec.ID != "id-1" {
		t.Errorf("ID = %q, want %q", rec.ID, "id-1")
	}
	if rec.Category != scan.CategoryURL {
		t.Errorf("Category = %q, want %q", rec.Category, scan.CategoryURL)
	}

	t.Run("duplicate returns existing record", func(t *testing.T) {
		body := strings.NewReader(`{"content": "https://example.com"}`)
		rr := doRequest(t, srv, "POST", "/api/history", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}

		var dup scan.Record
		if err := json.NewDecoder(rr.Body).Decode(&dup); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if dup.ID != "id-1" {
			t.Errorf("duplicate ID = %q, want %q", dup.ID, "id-1")
		}
		if store.Len() != 1 {
			t.Errorf("store length = %d, want 1", store.Len())
		}
	})

	t.Run("invalid body rejected", func(t *testing.T) {
		rr := doRequest(t, srv, "POST", "/api/history", strings.NewReader("not json"))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})
}

func TestHandleHistoryDelete(t *testing.T) {
	srv, store := newTestServer(t)
	rec, _, err := store.Add("tel:+15550100")
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	rr := doRequest(t, srv, "DELETE", "/api/history/"+rec.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if store.Len() != 0 {
		t.Errorf("store length = %d, want 0", store.Len())
	}

	t.Run("unknown id returns not found", func(t *testing.T) {
		rr := doRequest(t, srv, "DELETE", "/api/history/no-such-id", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
		}
	})
}

func TestHandleHistoryClear(t *testing.T) {
	srv, store := newTestServer(t)
	for _, content := range []string{"one", "two"} {
		if _, _, err := store.Add(content); err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}

	rr := doRequest(t, srv, "DELETE", "/api/history", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if store.Len() != 0 {
		t.Errorf("store length = %d, want 0", store.Len())
	}
}

func TestHandleGenerate(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("renders scannable png", func(t *testing.T) {
		rr := doRequest(t, srv, "GET", "/api/generate?text=example.com&category=url", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q, want %q", ct, "image/png")
		}

		img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
		if err != nil {
			t.Fatalf("decoding png: %v", err)
		}
		content, err := qr.Decode(img)
		if err != nil {
			t.Fatalf("decoding qr: %v", err)
		}
		if content != "https://example.com" {
			t.Errorf("decoded content = %q, want %q", content, "https://example.com")
		}
	})

	t.Run("size overrides default", func(t *testing.T) {
		rr := doRequest(t, srv, "GET", "/api/generate?text=hello&size=300", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}
		img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
		if err != nil {
			t.Fatalf("decoding png: %v", err)
		}
		if w := img.Bounds().Dx(); w != 300 {
			t.Errorf("image width = %d, want 300", w)
		}
	})

	t.Run("bad requests rejected", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
		}{
			{"missing text", "/api/generate"},
			{"unknown category", "/api/generate?text=x&category=hologram"},
			{"non-numeric size", "/api/generate?text=x&size=abc"},
			{"negative size", "/api/generate?text=x&size=-5"},
			{"unknown level", "/api/generate?text=x&level=bogus"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rr := doRequest(t, srv, "GET", tt.target, nil)
				if rr.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
				}
			})
		}
	})
}

func TestHandleEvents_StreamsStoreChanges(t *testing.T) {
	srv, store := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("opening event stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want %q", ct, "text/event-stream")
	}

	// The subscription is registered before the response headers are
	// flushed, so the stream sees this mutation.
	if _, _, err := store.Add("https://example.com"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	var eventLine, dataLine string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			eventLine = line
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = line
			break
		}
	}

	if eventLine != "event: added" {
		t.Errorf("event line = %q, want %q", eventLine, "event: added")
	}

	var ev scan.Event
	if err := json.Unmarshal([]byte(strings.TrimPrefix(dataLine, "data: ")), &ev); err != nil {
		t.Fatalf("decoding event data: %v", err)
	}
	if ev.Op != scan.EventAdded {
		t.Errorf("event op = %q, want %q", ev.Op, scan.EventAdded)
	}
	if ev.Record.Content != "https://example.com" {
		t.Errorf("event record content = %q, want %q", ev.Record.Content, "https://example.com")
	}
}
