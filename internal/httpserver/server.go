// Package httpserver exposes the resolver over HTTP: read-only inspection
// endpoints, explicit reconcile/sweep triggers for operators, and the
// Prometheus scrape endpoint.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/resolver"
)

// Server is the HTTP control surface of the daemon.
type Server struct {
	resolver *resolver.Resolver
	index    interfaces.ArchiveIndex
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates the control server.
func NewServer(res *resolver.Resolver, index interfaces.ArchiveIndex, logger *zap.Logger) *Server {
	return &Server{
		resolver: res,
		index:    index,
		logger:   logger,
	}
}

// Start serves on the given TCP address until Stop or a listener error.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.createRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute, // a triggered reconcile may run a full build
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting control HTTP server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Stopping control HTTP server")
	return s.server.Shutdown(ctx)
}

// createRouter creates and configures the HTTP router
func (s *Server) createRouter() *mux.Router {
	router := mux.NewRouter()

	// Read-only inspection
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/status", s.handleStatus).Methods("GET")
	router.HandleFunc("/entries", s.handleEntries).Methods("GET")

	// Operator triggers
	router.HandleFunc("/reconcile", s.handleReconcile).Methods("POST")
	router.HandleFunc("/sweep", s.handleSweep).Methods("POST")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

// handleStatus runs a read-only validity check and reports the decision.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolver.Check(r.Context(), time.Now())
	if err != nil {
		s.writeErrorResponse(w, "Validity check failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeResponse(w, &statusResponse{Success: true, CheckResult: res})
}

// handleEntries lists the archive index.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.index.ListEntries(r.Context())
	if err != nil {
		s.writeErrorResponse(w, "Failed to list entries: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeResponse(w, &entriesResponse{Success: true, Entries: entries})
}

// handleReconcile triggers one reconcile pass. The response reports a failed
// build rather than turning it into a transport error.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolver.Reconcile(r.Context(), time.Now())
	if err != nil {
		s.writeErrorResponse(w, "Reconcile failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := &reconcileResponse{Success: true, ReconcileResult: res}
	if res.BuildErr != nil {
		resp.BuildError = res.BuildErr.Error()
	}
	s.writeResponse(w, resp)
}

// handleSweep triggers one eviction sweep.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolver.Sweep(r.Context(), time.Now())
	if err != nil {
		s.writeErrorResponse(w, "Sweep failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeResponse(w, &sweepResponse{Success: true, SweepResult: res})
}

// writeResponse writes JSON response
func (s *Server) writeResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeErrorResponse writes error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := map[string]interface{}{
		"success": false,
		"error":   message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to write error response", zap.Error(err))
	}
}
