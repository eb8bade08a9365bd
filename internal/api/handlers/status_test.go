package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mkovalev/playsquad/internal/status"
)

type mockManualStore struct {
	seeded []string
	set    []status.Status
	err    error
}

func (m *mockManualStore) SeedOnce(_ context.Context, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.seeded = append(m.seeded, userID)
	return nil
}

func (m *mockManualStore) SetMine(_ context.Context, st status.Status) error {
	if m.err != nil {
		return m.err
	}
	m.set = append(m.set, st)
	return nil
}

type mockResolver map[string]status.Status

func (m mockResolver) Effective(userID string) status.Status {
	if st, ok := m[userID]; ok {
		return st
	}
	return status.Offline
}

func TestStartSessionSeedsIdentity(t *testing.T) {
	store := &mockManualStore{}
	h := NewStatusHandler(store, mockResolver{}, nil)

	body := bytes.NewBufferString(`{"user_id":"u1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", body)
	rec := httptest.NewRecorder()
	h.StartSession(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want 204", rec.Code)
	}
	if len(store.seeded) != 1 || store.seeded[0] != "u1" {
		t.Errorf("Seeded = %v, want [u1]", store.seeded)
	}
}

func TestStartSessionRejectsBadInput(t *testing.T) {
	store := &mockManualStore{}
	h := NewStatusHandler(store, mockResolver{}, nil)

	for _, body := range []string{`{"user_id":""}`, `{}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		h.StartSession(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Body %q: status = %d, want 400", body, rec.Code)
		}
	}
	if len(store.seeded) != 0 {
		t.Errorf("Invalid requests reached the store: %v", store.seeded)
	}
}

func TestSetMineAcceptsValidStatus(t *testing.T) {
	store := &mockManualStore{}
	h := NewStatusHandler(store, mockResolver{}, nil)

	body := bytes.NewBufferString(`{"status":"away"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/status", body)
	rec := httptest.NewRecorder()
	h.SetMine(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want 204", rec.Code)
	}
	if len(store.set) != 1 || store.set[0] != status.Away {
		t.Errorf("Store writes = %v, want [away]", store.set)
	}
}

func TestSetMineRejectsInvalidStatus(t *testing.T) {
	store := &mockManualStore{}
	h := NewStatusHandler(store, mockResolver{}, nil)

	for _, body := range []string{`{"status":"invisible"}`, `{"status":""}`, `not json`} {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/status", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		h.SetMine(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Body %q: status = %d, want 400", body, rec.Code)
		}
	}
	if len(store.set) != 0 {
		t.Errorf("Invalid requests reached the store: %v", store.set)
	}
}

func TestGetEffectiveResolvesThroughPrecedence(t *testing.T) {
	resolver := mockResolver{"u1": status.DND}
	h := NewStatusHandler(&mockManualStore{}, resolver, nil)

	router := chi.NewRouter()
	router.Get("/api/v1/status/{userID}", h.GetEffective)

	for userID, want := range map[string]status.Status{
		"u1":      status.DND,
		"unknown": status.Offline,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status/"+userID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", userID, rec.Code)
		}
		var resp EffectiveStatusResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.UserID != userID || resp.Status != string(want) {
			t.Errorf("%s: response = %+v, want status %s", userID, resp, want)
		}
	}
}
