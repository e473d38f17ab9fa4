// Package testutil provides shared test helpers for setting up index
// databases and on-disk directory trees.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTree materializes relative paths under a temp directory and returns
// its root. Paths ending in "/" become directories; everything else becomes
// an empty file with its parents created.
func TestTree(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		abs := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(p, "/")))
		if strings.HasSuffix(p, "/") {
			if err := os.MkdirAll(abs, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// Entries builds normalized entries from slash paths, for seeding a store
// without touching the filesystem. Paths ending in "/" become folders.
func Entries(paths ...string) []models.Entry {
	out := make([]models.Entry, 0, len(paths))
	for _, p := range paths {
		isDir := strings.HasSuffix(p, "/")
		out = append(out, models.NewEntry(strings.TrimSuffix(p, "/"), isDir, 0, 0))
	}
	return out
}
