package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mkovalev/playsquad/internal/match"
	"github.com/mkovalev/playsquad/internal/presence"
	"github.com/mkovalev/playsquad/internal/status"
	"github.com/mkovalev/playsquad/internal/storage/repository"
)

// Server represents the REST API server. All matchmaking policy lives in
// the engine packages; the server is a thin HTTP collaborator over them.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	logger     *slog.Logger

	addr           string
	readTimeout    time.Duration
	writeTimeout   time.Duration
	allowedOrigins []string

	controller *match.Controller
	resolver   *status.Resolver
	statuses   *status.Store
	profiles   repository.ProfileRepository
	hub        *presence.Hub
}

// Config holds configuration for the API server.
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           ":8080",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// Deps holds the engine collaborators the server exposes over HTTP.
type Deps struct {
	Controller *match.Controller
	Resolver   *status.Resolver
	Statuses   *status.Store
	Profiles   repository.ProfileRepository
	Hub        *presence.Hub
	Logger     *slog.Logger
}

// NewServer creates a new API server over the engine collaborators.
func NewServer(cfg *Config, deps Deps) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if deps.Controller == nil || deps.Resolver == nil || deps.Statuses == nil {
		return nil, fmt.Errorf("controller, resolver and status store are required")
	}
	if deps.Profiles == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:         chi.NewRouter(),
		logger:         logger,
		addr:           cfg.Addr,
		readTimeout:    cfg.ReadTimeout,
		writeTimeout:   cfg.WriteTimeout,
		allowedOrigins: cfg.AllowedOrigins,
		controller:     deps.Controller,
		resolver:       deps.Resolver,
		statuses:       deps.Statuses,
		profiles:       deps.Profiles,
		hub:            deps.Hub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json for requests carrying
// a body. GET, DELETE and the websocket upgrade are unaffected.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if r.ContentLength != 0 {
				ct := r.Header.Get("Content-Type")
				if ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
					http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler exposes the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server in a goroutine.
func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("api server starting", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("api server error", "error", err)
		}
	}()
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down api server")
	return s.httpServer.Shutdown(ctx)
}
