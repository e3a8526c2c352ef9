// Package server exposes the dashboard page, the control API and the live
// tick stream.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/signalscope/signalscope/internal/config"
	"github.com/signalscope/signalscope/internal/server/ws"
	"github.com/signalscope/signalscope/internal/sim"
)

// Server wires the engine, runner and hub behind an HTTP listener.
type Server struct {
	cfg    *config.Config
	engine *sim.Engine
	runner *sim.Runner
	hub    *ws.Hub
	logger logrus.FieldLogger
	http   *http.Server
}

// New builds the server and its routes.
func New(cfg *config.Config, engine *sim.Engine, runner *sim.Runner, hub *ws.Hub, logger logrus.FieldLogger) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine,
		runner: runner,
		hub:    hub,
		logger: logger,
	}

	router := mux.NewRouter()
	// mux reports a method mismatch as 404 unless this handler is set; the
	// subrouter needs its own copy because it is not inherited.
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.MethodNotAllowedHandler = methodNotAllowed
	router.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.MethodNotAllowedHandler = methodNotAllowed
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods(http.MethodPut)
	api.HandleFunc("/sim/start", s.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/sim/stop", s.handleStop).Methods(http.MethodPost)
	api.HandleFunc("/sim/reset", s.handleReset).Methods(http.MethodPost)
	api.HandleFunc("/ws", ws.Handler(hub)).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the websocket stream is long-lived
	}

	return s
}

// ListenAndServe blocks serving HTTP until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.WithField("addr", s.http.Addr).Info("http server listening")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
