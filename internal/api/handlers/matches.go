package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mkovalev/playsquad/internal/api/response"
	"github.com/mkovalev/playsquad/internal/match"
)

// MatchController is the slice of the match controller the HTTP layer
// needs.
type MatchController interface {
	Fetch(ctx context.Context, viewerID string)
	Refetch(ctx context.Context)
	ViewerID() string
	Loading() bool
	Err() error
	IsEmpty() bool
	Results(opts match.Options) []match.ScoredCandidate
}

// MatchHandler handles match list API requests.
type MatchHandler struct {
	controller MatchController
	logger     *slog.Logger
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(controller MatchController, logger *slog.Logger) *MatchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchHandler{controller: controller, logger: logger}
}

// MatchListResponse is the snapshot of the match list state. The list is
// fetched asynchronously; clients poll (or listen on the presence channel)
// while loading is true.
type MatchListResponse struct {
	ViewerID string                  `json:"viewer_id"`
	Loading  bool                    `json:"loading"`
	Empty    bool                    `json:"empty"`
	Error    string                  `json:"error,omitempty"`
	Matches  []match.ScoredCandidate `json:"matches"`
}

// GetMatches returns the current match list for the viewer. A viewer_id
// different from the bound one triggers a fresh fetch; the derivation
// options (min_score, online_only, sort) are applied per request on the
// cached list.
func (h *MatchHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		response.BadRequest(w, fmt.Errorf("viewer_id is required"))
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if h.controller.ViewerID() != viewerID {
		h.controller.Fetch(context.WithoutCancel(r.Context()), viewerID)
	}

	resp := MatchListResponse{
		ViewerID: viewerID,
		Loading:  h.controller.Loading(),
		Empty:    h.controller.IsEmpty(),
		Matches:  h.controller.Results(opts),
	}
	if err := h.controller.Err(); err != nil {
		resp.Error = err.Error()
		var fetchErr *match.FetchError
		if errors.As(err, &fetchErr) && errors.Is(fetchErr.Err, match.ErrViewerProfileMissing) {
			response.JSON(w, http.StatusNotFound, resp)
			return
		}
	}

	response.JSON(w, http.StatusOK, resp)
}

// Refresh re-issues the fetch for the bound viewer.
func (h *MatchHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.controller.ViewerID() == "" {
		response.BadRequest(w, fmt.Errorf("no viewer bound; fetch matches first"))
		return
	}
	h.controller.Refetch(context.WithoutCancel(r.Context()))
	response.Accepted(w, map[string]string{"status": "refreshing"})
}

func parseOptions(r *http.Request) (match.Options, error) {
	var opts match.Options
	q := r.URL.Query()

	if raw := q.Get("min_score"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid min_score %q", raw)
		}
		opts.MinScore = min
	}
	if raw := q.Get("online_only"); raw != "" {
		only, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid online_only %q", raw)
		}
		opts.OnlineOnly = only
	}
	switch q.Get("sort") {
	case "", "score":
		opts.SortBy = match.SortByScore
	case "online":
		opts.SortBy = match.SortByOnline
	default:
		return opts, fmt.Errorf("invalid sort %q", q.Get("sort"))
	}

	return opts, nil
}
