package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"qrscan-go/internal/qr"
	"qrscan-go/internal/scan"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "OK")
}

// handleHistoryList returns history records, newest first. ?q= narrows to
// records whose content contains the query, ?limit= truncates the result.
func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	records := s.store.Search(r.URL.Query().Get("q"))

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(records) {
			records = records[:limit]
		}
	}

	if records == nil {
		records = []scan.Record{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

type addRequest struct {
	Content string `json:"content"`
}

// handleHistoryAdd records new content. New content returns 201 with the
// created record; duplicate content returns 200 with the existing record.
func (s *Server) handleHistoryAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// A persist failure is advisory; the in-memory mutation has committed
	// and the store has logged the error.
	rec, inserted, _ := s.store.Add(req.Content)
	if !inserted {
		existing, ok := s.recordByContent(req.Content)
		if !ok {
			s.writeError(w, http.StatusInternalServerError, "duplicate content missing from history")
			return
		}
		s.writeJSON(w, http.StatusOK, existing)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

// handleHistoryDelete removes one record by id.
func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deleted, _ := s.store.Delete(id)
	if !deleted {
		s.writeError(w, http.StatusNotFound, "record not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHistoryClear empties the history.
func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	_ = s.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// handleGenerate renders ?text= as a QR code PNG. ?category= overrides
// classification (the content is normalized for the resolved category),
// ?size= and ?level= override the configured defaults.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		s.writeError(w, http.StatusBadRequest, "text parameter is required")
		return
	}

	cat := scan.Classify(text)
	if raw := r.URL.Query().Get("category"); raw != "" {
		cat = scan.ParseCategory(raw)
		if cat == scan.CategoryUnknown && raw != string(scan.CategoryUnknown) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", raw))
			return
		}
	}

	opts := qr.Options{Size: s.gen.Size, Level: s.gen.Level}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			s.writeError(w, http.StatusBadRequest, "size must be a positive integer")
			return
		}
		opts.Size = size
	}
	if raw := r.URL.Query().Get("level"); raw != "" {
		opts.Level = raw
	}

	png, err := qr.Encode(scan.ForGeneration(text, cat), opts)
	if err != nil {
		s.logger.Warn("qr generation failed", "error", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleEvents streams store mutations as server-sent events. Each event
// is named after the operation (added, deleted, cleared) and carries the
// JSON-encoded scan.Event as data. Events that arrive faster than the
// client reads them are dropped.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan scan.Event, 16)
	cancel := s.store.Subscribe(func(ev scan.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer cancel()

	s.logger.Debug("event stream opened", "remote", r.RemoteAddr)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("event stream closed", "remote", r.RemoteAddr)
			return
		case ev := <-events:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Op, data)
			flusher.Flush()
		}
	}
}

// recordByContent finds the record whose content exactly matches content.
func (s *Server) recordByContent(content string) (scan.Record, bool) {
	for _, rec := range s.store.Records() {
		if rec.Content == content {
			return rec, true
		}
	}
	return scan.Record{}, false
}
