// Package testutil provides shared test helpers for setting up vaults and databases.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/vaultmcp/internal/index"
	"github.com/starford/vaultmcp/internal/noteservice"
	"github.com/starford/vaultmcp/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory seeded with notes (path → content).
func TestVault(t *testing.T, notes map[string]string) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir(), storage.WithIgnore(".obsidian/**", ".trash/**"))
	if err != nil {
		t.Fatal(err)
	}
	for p, content := range notes {
		if err := store.Write(p, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestService wires a seeded vault, a synced index, and a note service.
func TestService(t *testing.T, notes map[string]string) (*noteservice.Service, *storage.FS, *index.DB) {
	t.Helper()
	store := TestVault(t, notes)
	db := TestDB(t)
	if err := index.Sync(db, store, DiscardLogger()); err != nil {
		t.Fatal(err)
	}
	return noteservice.NewService(store, db, noteservice.WithLogger(DiscardLogger())), store, db
}
