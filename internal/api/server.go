package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/marcus/notif/internal/db"
)

// basePath prefixes every notifications route
const basePath = "/api/notifications/v1"

// Server is the HTTP API server for notification behaviors.
type Server struct {
	config      Config
	http        *http.Server
	store       *db.DB
	metrics     *Metrics
	rateLimiter *RateLimiter
	addr        net.Addr
}

// NewServer creates a new Server with the given config and store.
func NewServer(cfg Config, store *db.DB) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	s := &Server{
		config:      cfg,
		store:       store,
		metrics:     NewMetrics(),
		rateLimiter: NewRateLimiter(time.Minute),
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.addr = ln.Addr()

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// routes builds the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health & metrics
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metricz", s.handleMetrics)

	// Bundles and notifications
	mux.HandleFunc("GET "+basePath+"/bundles", s.handleListBundles)
	mux.HandleFunc("GET "+basePath+"/bundles/{id}/notifications", s.handleListNotifications)
	mux.HandleFunc("GET "+basePath+"/notifications/{id}", s.handleGetNotification)
	mux.HandleFunc("PUT "+basePath+"/notifications/{id}/behavior", s.handleSaveNotificationBehavior)

	// Bundle defaults and behavior groups
	mux.HandleFunc("GET "+basePath+"/bundles/{id}/defaults", s.handleGetDefaults)
	mux.HandleFunc("PUT "+basePath+"/bundles/{id}/defaults", s.handleSaveDefaults)
	mux.HandleFunc("GET "+basePath+"/bundles/{id}/behaviorGroups", s.handleListBehaviorGroups)
	mux.HandleFunc("POST "+basePath+"/bundles/{id}/behaviorGroups", s.handleCreateBehaviorGroup)
	mux.HandleFunc("DELETE "+basePath+"/behaviorGroups/{id}", s.handleDeleteBehaviorGroup)

	// Suggestions and integrations
	mux.HandleFunc("GET "+basePath+"/recipients", s.handleSearchRecipients)
	mux.HandleFunc("GET "+basePath+"/integrations", s.handleSearchIntegrations)
	mux.HandleFunc("DELETE "+basePath+"/integrations/{id}", s.handleDeleteIntegration)
	mux.HandleFunc("GET "+basePath+"/integrations/{id}/attempts", s.handleListAttempts)
	mux.HandleFunc("POST "+basePath+"/integrations/{id}/test", s.limitDeliveries(s.handleTestIntegration, s.config.RateLimitTest))

	maxBytes := s.config.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return chain(mux, requestMiddleware, recoveryMiddleware, accessMiddleware(s.metrics), maxBytesMiddleware(maxBytes), s.CORSMiddleware)
}

// handleHealth returns a health check response, pinging the DB.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "detail": "db unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics returns a snapshot of server metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}
