package storage

import (
	"path/filepath"
	"testing"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if db.Conn() == nil {
		t.Fatal("Conn() returned nil")
	}
	if err := db.Conn().Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOpen_NilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Open(nil) did not return an error")
	}
}

func TestOpen_AutoMigrateCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playsquad.db")

	cfg := DefaultConfig(path)
	cfg.AutoMigrate = true

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open database with auto-migrate: %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, table := range []string{"profiles", "user_status"} {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not created by migrations: %v", table, err)
		}
	}
}
