package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkovalev/playsquad/internal/api/handlers"
	"github.com/mkovalev/playsquad/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	if s.hub != nil {
		s.router.Get("/ws/presence", s.hub.ServeWS)
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		matchHandler := handlers.NewMatchHandler(s.controller, s.logger)
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.GetMatches)
			r.Post("/refresh", matchHandler.Refresh)
		})

		statusHandler := handlers.NewStatusHandler(s.statuses, s.resolver, s.logger)
		r.Post("/session", statusHandler.StartSession)
		r.Route("/status", func(r chi.Router) {
			r.Put("/", statusHandler.SetMine)
			r.Get("/{userID}", statusHandler.GetEffective)
		})

		profileHandler := handlers.NewProfileHandler(s.profiles, s.logger)
		r.Route("/profiles", func(r chi.Router) {
			r.Put("/{userID}", profileHandler.Upsert)
			r.Get("/{userID}", profileHandler.Get)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "playsquad-matchd",
	})
}
