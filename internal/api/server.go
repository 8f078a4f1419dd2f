// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/pipeline"
	"github.com/pulse360/questengine/internal/sqlite"
)

// Server exposes the question pipeline over HTTP. Routing stays thin:
// authentication, uploads and report rendering live in other services.
type Server struct {
	router    chi.Router
	generator *pipeline.Generator
	catalog   *sqlite.Store
}

// NewServer wires the API around a generator and the template catalog.
func NewServer(generator *pipeline.Generator, catalog *sqlite.Store) (*Server, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	s := &Server{
		router:    chi.NewRouter(),
		generator: generator,
		catalog:   catalog,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Post("/api/v1/templates/generate", s.handleGenerate)
	s.router.Get("/api/v1/templates", s.handleListTemplates)
	s.router.Get("/api/v1/templates/{id}", s.handleGetTemplate)
	s.router.Get("/api/v1/logs", s.handleLogs)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
