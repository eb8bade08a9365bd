package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkovalev/playsquad/internal/api/response"
	"github.com/mkovalev/playsquad/internal/archetype"
	"github.com/mkovalev/playsquad/internal/storage/models"
	"github.com/mkovalev/playsquad/internal/storage/repository"
	"github.com/mkovalev/playsquad/internal/traits"
)

// ProfileHandler handles matchmaking profile API requests.
type ProfileHandler struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles repository.ProfileRepository, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// ProfileRequest is the body of PUT /profiles/{userID}.
type ProfileRequest struct {
	Nickname  string        `json:"nickname"`
	AvatarURL string        `json:"avatar_url"`
	Archetype string        `json:"archetype"`
	Traits    traits.Vector `json:"traits"`
}

// ProfileResponse is a profile as returned by the API.
type ProfileResponse struct {
	UserID    string        `json:"user_id"`
	Nickname  string        `json:"nickname"`
	AvatarURL string        `json:"avatar_url"`
	Archetype string        `json:"archetype"`
	Traits    traits.Vector `json:"traits"`
}

// Upsert creates or wholesale-replaces a user's matchmaking profile.
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.BadRequest(w, fmt.Errorf("user id is required"))
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := req.Traits.Validate(); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Archetype != "" && !archetype.Archetype(req.Archetype).Valid() {
		response.BadRequest(w, fmt.Errorf("unknown archetype %q", req.Archetype))
		return
	}

	err := h.profiles.Upsert(r.Context(), &models.Profile{
		UserID:    userID,
		Nickname:  req.Nickname,
		AvatarURL: req.AvatarURL,
		Archetype: req.Archetype,
		Vector:    req.Traits,
	})
	if err != nil {
		h.logger.Error("profile upsert failed", "user_id", userID, "error", err)
		response.InternalError(w, fmt.Errorf("save profile"))
		return
	}

	response.NoContent(w)
}

// Get returns a user's matchmaking profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.BadRequest(w, fmt.Errorf("user id is required"))
		return
	}

	p, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("profile load failed", "user_id", userID, "error", err)
		response.InternalError(w, fmt.Errorf("load profile"))
		return
	}
	if p == nil {
		response.NotFound(w, fmt.Errorf("no profile for %s", userID))
		return
	}

	response.Success(w, ProfileResponse{
		UserID:    p.UserID,
		Nickname:  p.Nickname,
		AvatarURL: p.AvatarURL,
		Archetype: p.Archetype,
		Traits:    p.Vector,
	})
}
