package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"qrscan-go/internal/config"
	"qrscan-go/internal/scan"
)

// Server is the qrscan HTTP API: history browsing and mutation, QR code
// generation, and a live change feed. Responses are JSON except /health
// (plain text) and /api/generate (PNG).
type Server struct {
	store  *scan.Store
	gen    config.GenerateConfig
	logger scan.Logger
	router *mux.Router
}

// NewServer creates a Server around the given store. gen supplies the
// generation defaults used when a request omits size or level.
func NewServer(store *scan.Store, gen config.GenerateConfig, logger scan.Logger) *Server {
	s := &Server{store: store, gen: gen, logger: logger}
	s.router = newRouter(s)
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func newRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/history", s.handleHistoryList).Methods("GET")
	r.HandleFunc("/api/history", s.handleHistoryAdd).Methods("POST")
	r.HandleFunc("/api/history", s.handleHistoryClear).Methods("DELETE")
	r.HandleFunc("/api/history/{id}", s.handleHistoryDelete).Methods("DELETE")
	r.HandleFunc("/api/generate", s.handleGenerate).Methods("GET")
	r.HandleFunc("/api/events", s.handleEvents).Methods("GET")
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
