// Package api exposes the operation catalog and call surface over
// HTTP. Transport-level problems (bad JSON, wrong method) are HTTP
// errors; dispatched calls always answer 200 with the envelope,
// error-flagged or not.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"

	"github.com/burrowdb/burrow/db"
	"github.com/burrowdb/burrow/dispatch"
	"github.com/burrowdb/burrow/telemetry"
)

// Server wires the dispatcher to the HTTP surface.
type Server struct {
	dispatcher  *dispatch.Dispatcher
	executor    *db.Executor
	stats       *Stats
	catalogJSON []byte
	catalogETag string
}

// NewServer builds the HTTP server state. The catalog is rendered once;
// it cannot change while the process lives, so its ETag is constant.
func NewServer(dispatcher *dispatch.Dispatcher, executor *db.Executor) (*Server, error) {
	catalogJSON, err := renderCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to render catalog: %w", err)
	}

	return &Server{
		dispatcher:  dispatcher,
		executor:    executor,
		stats:       NewStats(),
		catalogJSON: catalogJSON,
		catalogETag: fmt.Sprintf(`"%016x"`, xxhash.Sum64(catalogJSON)),
	}, nil
}

// Handler builds the full HTTP handler: chi routes, auth on the API
// surface, request logging, and gzip compression on responses.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/operations", s.handleCatalog)
		r.Post("/call/{name}", s.handleCall)
		r.Get("/memo", s.handleMemo)
		r.Get("/stats", s.handleStats)
	})

	r.Get("/healthz", s.handleHealth)

	if mh := telemetry.Handler(); mh != nil {
		r.Method(http.MethodGet, "/metrics", mh)
	}

	return gzhttp.GzipHandler(r)
}

// handleCatalog advertises the operation catalog with its shapes.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", s.catalogETag)
	if r.Header.Get("If-None-Match") == s.catalogETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(s.catalogJSON)
}

// handleCall delivers one (name, argument bag) pair to the dispatcher
// and relays the envelope back unchanged.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var args map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}

	env := s.dispatcher.Dispatch(r.Context(), name, args)
	s.stats.Record(name, env.IsError)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("Failed to encode envelope")
	}
}

// handleMemo serves the synthesized insights memo.
func (s *Server) handleMemo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, s.dispatcher.Ledger().Synthesize())
}

// handleStats serves per-operation dispatch counters.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, s.stats.Snapshot())
}

// handleHealth pings the database handle.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.executor.Ping(ctx); err != nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSONResponse(w, map[string]string{"status": "ok"})
}

// writeJSONResponse writes a successful JSON response
func writeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error JSON response
func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"error": message}); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
	}
}
