package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkovalev/playsquad/internal/api/response"
	"github.com/mkovalev/playsquad/internal/status"
)

// ManualStore is the slice of the manual status store the HTTP layer
// needs.
type ManualStore interface {
	SeedOnce(ctx context.Context, userID string) error
	SetMine(ctx context.Context, st status.Status) error
}

// EffectiveResolver resolves the displayed status for any user.
type EffectiveResolver interface {
	Effective(userID string) status.Status
}

// StatusHandler handles availability status API requests.
type StatusHandler struct {
	store    ManualStore
	resolver EffectiveResolver
	logger   *slog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(store ManualStore, resolver EffectiveResolver, logger *slog.Logger) *StatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusHandler{store: store, resolver: resolver, logger: logger}
}

// StartSessionRequest is the body of POST /session.
type StartSessionRequest struct {
	UserID string `json:"user_id"`
}

// StartSession seeds the manual status store for the given identity and
// binds it as the session identity. Seeding is idempotent, so clients may
// call this on every reconnect.
func (h *StatusHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.UserID == "" {
		response.BadRequest(w, fmt.Errorf("user_id is required"))
		return
	}

	if err := h.store.SeedOnce(r.Context(), req.UserID); err != nil {
		h.logger.Error("session seed failed", "user_id", req.UserID, "error", err)
		response.InternalError(w, fmt.Errorf("start session"))
		return
	}

	response.NoContent(w)
}

// SetStatusRequest is the body of PUT /status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetMine sets the session identity's manual status. The write is
// optimistic; a persistence failure is not reported here.
func (h *StatusHandler) SetMine(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	st, err := status.Parse(req.Status)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.store.SetMine(r.Context(), st); err != nil {
		response.BadRequest(w, err)
		return
	}

	response.NoContent(w)
}

// EffectiveStatusResponse is the body of GET /status/{userID}.
type EffectiveStatusResponse struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

// GetEffective returns the effective (displayed) status for a user.
// Unknown users read as offline; this endpoint never 404s.
func (h *StatusHandler) GetEffective(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.BadRequest(w, fmt.Errorf("user id is required"))
		return
	}

	response.JSON(w, http.StatusOK, EffectiveStatusResponse{
		UserID: userID,
		Status: string(h.resolver.Effective(userID)),
	})
}
