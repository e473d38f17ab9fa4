//go:build !sqlite_fts5

package index

import (
	"database/sql"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; the hybrid engine runs in fallback-only mode.
	return nil
}

// dropFTS removes the trigger set a previous FTS5 build left behind, so
// writes to the files table stop touching the unavailable virtual table.
// The table itself cannot be dropped without the fts5 module; the next FTS5
// build drops and recreates it.
func dropFTS(conn *sql.DB) error {
	for _, stmt := range []string{
		`DROP TRIGGER IF EXISTS files_ai`,
		`DROP TRIGGER IF EXISTS files_ad`,
		`DROP TRIGGER IF EXISTS files_au`,
	} {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// FullTextAvailable reports whether token queries are supported by this build.
func (db *DB) FullTextAvailable() bool { return false }

// QueryTokens is unavailable without FTS5. Callers check FullTextAvailable
// and fall back to substring queries.
func (db *DB) QueryTokens(_ string, _ int) ([]models.Hit, error) {
	return nil, apperr.ErrFullTextUnavailable
}
