//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/tokenize"
)

// The FTS table is external-content over files and maintained entirely by
// triggers, so it can never drift from the rows: every insert, update, and
// delete flows through the same transaction.
const ftsSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
	path,
	name,
	content='files',
	content_rowid='id',
	tokenize='unicode61 remove_diacritics 1'
);

CREATE TRIGGER IF NOT EXISTS files_ai AFTER INSERT ON files BEGIN
	INSERT INTO files_fts(rowid, path, name)
	VALUES (new.id, new.path, new.name);
END;

CREATE TRIGGER IF NOT EXISTS files_ad AFTER DELETE ON files BEGIN
	INSERT INTO files_fts(files_fts, rowid, path, name)
	VALUES ('delete', old.id, old.path, old.name);
END;

CREATE TRIGGER IF NOT EXISTS files_au AFTER UPDATE ON files BEGIN
	INSERT INTO files_fts(files_fts, rowid, path, name)
	VALUES ('delete', old.id, old.path, old.name);
	INSERT INTO files_fts(rowid, path, name)
	VALUES (new.id, new.path, new.name);
END;
`

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(ftsSchemaSQL)
	return err
}

func dropFTS(conn *sql.DB) error {
	for _, stmt := range []string{
		`DROP TRIGGER IF EXISTS files_ai`,
		`DROP TRIGGER IF EXISTS files_ad`,
		`DROP TRIGGER IF EXISTS files_au`,
		`DROP TABLE IF EXISTS files_fts`,
	} {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// FullTextAvailable reports whether token queries are supported by this build.
func (db *DB) FullTextAvailable() bool { return true }

// QueryTokens runs a token-based full-text query: every query token must be
// present as a prefix of some path token (AND across tokens), matching
// case-insensitively by tokenizer design. Candidates come back ordered by
// bm25 and are re-ranked: more exact (non-prefix) token matches first, then
// shorter paths, ties broken by path ascending.
func (db *DB) QueryTokens(query string, limit int) ([]models.Hit, error) {
	tokens := tokenize.Tokens(query)
	if len(tokens) == 0 || limit <= 0 {
		return nil, nil
	}

	rows, err := db.conn.Query(`
		SELECT f.path, f.name, f.ext, f.parent, f.is_dir, f.size, f.modified
		FROM files_fts
		JOIN files AS f ON f.id = files_fts.rowid
		WHERE files_fts MATCH ?
		ORDER BY bm25(files_fts)
		LIMIT ?
	`, tokenize.MatchExpr(tokens), limit)
	if err != nil {
		return nil, fmt.Errorf("index: token query: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	hits := make([]models.Hit, 0, len(entries))
	for _, e := range entries {
		set := tokenize.TokenSet(e.Path)
		exact := 0
		for _, tok := range tokens {
			if _, ok := set[tok]; ok {
				exact++
			}
		}
		hits = append(hits, models.Hit{Entry: e, ExactMatches: exact})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].ExactMatches != hits[j].ExactMatches {
			return hits[i].ExactMatches > hits[j].ExactMatches
		}
		if len(hits[i].Entry.Path) != len(hits[j].Entry.Path) {
			return len(hits[i].Entry.Path) < len(hits[j].Entry.Path)
		}
		return hits[i].Entry.Path < hits[j].Entry.Path
	})
	return hits, nil
}
