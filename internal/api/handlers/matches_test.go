package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkovalev/playsquad/internal/match"
)

// mockController is a mock match controller for handler tests.
type mockController struct {
	viewerID string
	loading  bool
	empty    bool
	err      error
	results  []match.ScoredCandidate

	fetches   []string
	refetches int
	lastOpts  match.Options
}

func (m *mockController) Fetch(_ context.Context, viewerID string) {
	m.fetches = append(m.fetches, viewerID)
	m.viewerID = viewerID
}

func (m *mockController) Refetch(_ context.Context) { m.refetches++ }

func (m *mockController) ViewerID() string { return m.viewerID }
func (m *mockController) Loading() bool    { return m.loading }
func (m *mockController) Err() error       { return m.err }
func (m *mockController) IsEmpty() bool    { return m.empty }

func (m *mockController) Results(opts match.Options) []match.ScoredCandidate {
	m.lastOpts = opts
	return m.results
}

func doGetMatches(t *testing.T, h *MatchHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.GetMatches(rec, req)
	return rec
}

func TestGetMatchesRequiresViewerID(t *testing.T) {
	h := NewMatchHandler(&mockController{}, nil)

	rec := doGetMatches(t, h, "/api/v1/matches")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestGetMatchesReturnsSnapshot(t *testing.T) {
	ctrl := &mockController{
		viewerID: "v1",
		results: []match.ScoredCandidate{
			{TargetID: "a", FinalScore: 87},
		},
	}
	h := NewMatchHandler(ctrl, nil)

	rec := doGetMatches(t, h, "/api/v1/matches?viewer_id=v1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var resp MatchListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ViewerID != "v1" || len(resp.Matches) != 1 || resp.Matches[0].TargetID != "a" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if len(ctrl.fetches) != 0 {
		t.Errorf("Fetch issued for already-bound viewer: %v", ctrl.fetches)
	}
}

func TestGetMatchesFetchesNewViewer(t *testing.T) {
	ctrl := &mockController{viewerID: "v1"}
	h := NewMatchHandler(ctrl, nil)

	rec := doGetMatches(t, h, "/api/v1/matches?viewer_id=v2")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if len(ctrl.fetches) != 1 || ctrl.fetches[0] != "v2" {
		t.Errorf("Fetches = %v, want [v2]", ctrl.fetches)
	}
}

func TestGetMatchesParsesDerivationOptions(t *testing.T) {
	ctrl := &mockController{viewerID: "v1"}
	h := NewMatchHandler(ctrl, nil)

	rec := doGetMatches(t, h, "/api/v1/matches?viewer_id=v1&min_score=60&online_only=true&sort=online")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if ctrl.lastOpts.MinScore != 60 || !ctrl.lastOpts.OnlineOnly || ctrl.lastOpts.SortBy != match.SortByOnline {
		t.Errorf("Options = %+v", ctrl.lastOpts)
	}
}

func TestGetMatchesRejectsBadOptions(t *testing.T) {
	h := NewMatchHandler(&mockController{}, nil)

	for _, target := range []string{
		"/api/v1/matches?viewer_id=v1&min_score=lots",
		"/api/v1/matches?viewer_id=v1&online_only=perhaps",
		"/api/v1/matches?viewer_id=v1&sort=vibes",
	} {
		if rec := doGetMatches(t, h, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestGetMatchesMissingViewerProfile(t *testing.T) {
	ctrl := &mockController{
		viewerID: "ghost",
		err:      &match.FetchError{ViewerID: "ghost", Err: match.ErrViewerProfileMissing},
	}
	h := NewMatchHandler(ctrl, nil)

	rec := doGetMatches(t, h, "/api/v1/matches?viewer_id=ghost")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", rec.Code)
	}
}

func TestRefreshRequiresBoundViewer(t *testing.T) {
	ctrl := &mockController{}
	h := NewMatchHandler(ctrl, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
	if ctrl.refetches != 0 {
		t.Errorf("Refetch issued without a bound viewer")
	}
}

func TestRefreshReissuesFetch(t *testing.T) {
	ctrl := &mockController{viewerID: "v1"}
	h := NewMatchHandler(ctrl, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("Status = %d, want 202", rec.Code)
	}
	if ctrl.refetches != 1 {
		t.Errorf("Refetches = %d, want 1", ctrl.refetches)
	}
}
