package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/mkovalev/playsquad/internal/storage/models"
	"github.com/mkovalev/playsquad/internal/traits"
)

func setupProfileTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE profiles (
			user_id     TEXT PRIMARY KEY,
			nickname    TEXT NOT NULL DEFAULT '',
			avatar_url  TEXT NOT NULL DEFAULT '',
			archetype   TEXT NOT NULL DEFAULT '',
			cooperation REAL NOT NULL DEFAULT 0,
			exploration REAL NOT NULL DEFAULT 0,
			strategy    REAL NOT NULL DEFAULT 0,
			leadership  REAL NOT NULL DEFAULT 0,
			social      REAL NOT NULL DEFAULT 0,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create profiles table: %v", err)
	}

	return db
}

func TestProfileRepository_UpsertAndGet(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	p := &models.Profile{
		UserID:    "u1",
		Nickname:  "Ari",
		AvatarURL: "https://cdn.example.com/a/u1.png",
		Archetype: "tiger",
		Vector:    traits.Vector{Cooperation: 35, Exploration: 70, Strategy: 60, Leadership: 85, Social: 45},
	}
	if err := repo.Upsert(ctx, p); err != nil {
		t.Fatalf("Failed to upsert profile: %v", err)
	}

	got, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if got == nil {
		t.Fatal("Expected profile, got nil")
	}
	if got.Nickname != "Ari" || got.Archetype != "tiger" {
		t.Errorf("Unexpected profile: %+v", got)
	}
	if got.Vector.Leadership != 85 {
		t.Errorf("Expected leadership 85, got %v", got.Vector.Leadership)
	}
}

func TestProfileRepository_GetMissingReturnsNil(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)

	got, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get on missing profile returned error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing profile, got %+v", got)
	}
}

func TestProfileRepository_UpsertReplacesVectorWholesale(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	p := &models.Profile{UserID: "u1", Vector: traits.Vector{Cooperation: 10, Social: 90}}
	if err := repo.Upsert(ctx, p); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	p.Vector = traits.Vector{Strategy: 50}
	if err := repo.Upsert(ctx, p); err != nil {
		t.Fatalf("Failed to re-upsert: %v", err)
	}

	got, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if got.Vector.Cooperation != 0 || got.Vector.Social != 0 || got.Vector.Strategy != 50 {
		t.Errorf("Vector not replaced wholesale: %+v", got.Vector)
	}
}

func TestProfileRepository_ListOthers(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		if err := repo.Upsert(ctx, &models.Profile{UserID: id}); err != nil {
			t.Fatalf("Failed to upsert %s: %v", id, err)
		}
	}

	others, err := repo.ListOthers(ctx, "u2")
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(others) != 2 {
		t.Fatalf("Expected 2 profiles, got %d", len(others))
	}
	if others[0].UserID != "u1" || others[1].UserID != "u3" {
		t.Errorf("Unexpected order or contents: %v, %v", others[0].UserID, others[1].UserID)
	}
}
