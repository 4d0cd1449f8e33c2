// Package health exposes the gateway's /health and /ready endpoints.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dotsetgreg/kumpel/pkg/logger"
)

type Server struct {
	addr      string
	startedAt time.Time
	ready     atomic.Bool
	server    *http.Server
	mux       *http.ServeMux
}

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func NewServer(host string, port int) *Server {
	s := &Server{
		addr:      fmt.Sprintf("%s:%d", host, port),
		startedAt: time.Now(),
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)
	return s
}

// ServeHTTP implements http.Handler so the routes can be tested without a
// live listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// SetReady flips the /ready state. The gateway marks the server ready once
// all services are up.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Start serves until Stop is called. It returns http.ErrServerClosed after
// a clean shutdown, like http.Server does.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.InfoCF("health", "Health server listening", map[string]interface{}{"addr": s.addr})
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logger.WarnCF("health", "Health server shutdown error", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WarnCF("health", "Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}
