//go:build sqlite_fts5

package index

import (
	"os"
	"testing"

	"github.com/starford/raido/internal/models"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files_fts`).Scan(&count); err != nil {
		t.Fatalf("files_fts table missing: %v", err)
	}
}

func TestFTS5_TriggersKeepIndexInSync(t *testing.T) {
	db := testDB(t)
	seed(t, db, "/projects/char_body.ma")

	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files_fts`).Scan(&count); err != nil {
		t.Fatalf("count files_fts: %v", err)
	}
	if count != 1 {
		t.Errorf("fts rows = %d, want 1", count)
	}

	seed(t, db, "/assets/prop_sword.ma", "/assets/prop_shield.ma")
	if err := db.conn.QueryRow(`SELECT count(*) FROM files_fts`).Scan(&count); err != nil {
		t.Fatalf("count files_fts: %v", err)
	}
	if count != 2 {
		t.Errorf("fts rows after replace = %d, want 2", count)
	}
}

func TestFTS5_TokenPrefixMatch(t *testing.T) {
	db := testDB(t)
	seed(t, db,
		"/projects/char_body.ma",
		"/projects/char_head.mb",
		"/assets/prop_sword.ma",
	)

	hits, err := db.QueryTokens("bod", 10)
	if err != nil {
		t.Fatalf("QueryTokens: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Entry.Path != "/projects/char_body.ma" {
		t.Errorf("path = %q", hits[0].Entry.Path)
	}
}

func TestFTS5_AllTokensMustMatch(t *testing.T) {
	db := testDB(t)
	seed(t, db,
		"/projects/char_body.ma",
		"/projects/char_head.mb",
	)

	hits, err := db.QueryTokens("char body", 10)
	if err != nil {
		t.Fatalf("QueryTokens: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}

	hits, err = db.QueryTokens("char missing", 10)
	if err != nil {
		t.Fatalf("QueryTokens: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected 0 hits, got %d", len(hits))
	}
}

func TestFTS5_CaseInsensitive(t *testing.T) {
	db := testDB(t)
	seed(t, db, "/projects/CharBody_Rig.ma")

	hits, err := db.QueryTokens("charbody", 10)
	if err != nil {
		t.Fatalf("QueryTokens: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(hits))
	}
}

func TestFTS5_NoSubstringMatch(t *testing.T) {
	db := testDB(t)
	seed(t, db, "/projects/char_body.ma")

	// Token queries match prefixes only; mid-token fragments need the
	// substring fallback.
	hits, err := db.QueryTokens("har_bo", 10)
	if err != nil {
		t.Fatalf("QueryTokens: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected 0 hits, got %d", len(hits))
	}
}

func TestFTS5_ExactTokenRanksFirst(t *testing.T) {
	db := testDB(t)
	seed(t, db,
		"/projects/body_extended.ma",
		"/projects/body.ma",
	)

	hits, err := db.QueryTokens("body", 10)
	if err != nil {
		t.Fatalf("QueryTokens: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	// Both contain the exact token "body"; the shorter path wins the tie.
	if hits[0].Entry.Path != "/projects/body.ma" {
		t.Errorf("first = %q, want /projects/body.ma", hits[0].Entry.Path)
	}
}

func TestFTS5_ExactMatchBeatsPrefixMatch(t *testing.T) {
	db := testDB(t)
	seed(t, db,
		"/a/very/deep/tree/body.ma",
		"/x/bodyguard.ma",
	)

	hits, err := db.QueryTokens("body", 10)
	if err != nil {
		t.Fatalf("QueryTokens: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Entry.Path != "/a/very/deep/tree/body.ma" {
		t.Errorf("first = %q, exact token should outrank prefix match", hits[0].Entry.Path)
	}
	if hits[0].ExactMatches != 1 || hits[1].ExactMatches != 0 {
		t.Errorf("exact matches = %d, %d; want 1, 0", hits[0].ExactMatches, hits[1].ExactMatches)
	}
}

// A store written by a build without FTS5 has rows but no full-text index.
// Opening it here must flag a rebuild so token queries never run against an
// empty index while the files table has contents.
func TestFTS5_OpenStoreFromFallbackBuild(t *testing.T) {
	f, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.ReplaceAll([]models.Entry{models.NewEntry("/a/char_body.ma", false, 0, 0)}, "p"); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	// Recreate the fallback build's on-disk state: no full-text table, no
	// triggers, availability marker off.
	if err := dropFTS(db.conn); err != nil {
		t.Fatalf("drop fts: %v", err)
	}
	if err := db.metaSet(metaFTSEnabled, "0"); err != nil {
		t.Fatalf("set fts marker: %v", err)
	}
	db.Close()

	db, err = Open(f.Name())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	if !db.NeedsRebuild() {
		t.Error("capability mismatch should flag a rebuild")
	}
	seed(t, db, "/a/char_body.ma")
	hits, err := db.QueryTokens("body", 10)
	if err != nil {
		t.Fatalf("QueryTokens: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit after rebuild, got %d", len(hits))
	}
}

func TestFTS5_EmptyQuery(t *testing.T) {
	db := testDB(t)
	seed(t, db, "/projects/char_body.ma")

	hits, err := db.QueryTokens("   ", 10)
	if err != nil {
		t.Fatalf("QueryTokens: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected 0 hits, got %d", len(hits))
	}
}
