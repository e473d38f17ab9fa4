// Package index provides the SQLite-backed path store with optional FTS5
// full-text search over indexed names and paths.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/raido/internal/apperr"
)

// schemaVersion is bumped whenever the table layout changes. A store created
// under a different version is reset and reindexed, never migrated in place.
const schemaVersion = "1"

const (
	metaSchemaVersion = "schema_version"
	metaLastIndexTime = "last_index_time"
	metaPolicy        = "policy"
	metaFTSEnabled    = "fts_enabled"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT NOT NULL UNIQUE,
	path_lower TEXT NOT NULL,
	name       TEXT NOT NULL,
	ext        TEXT NOT NULL DEFAULT '',
	parent     TEXT NOT NULL DEFAULT '',
	is_dir     INTEGER NOT NULL DEFAULT 0,
	size       INTEGER NOT NULL DEFAULT 0,
	modified   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_files_path_lower ON files(path_lower);
CREATE INDEX IF NOT EXISTS idx_files_parent ON files(parent);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// DB wraps a sql.DB with path-store operations.
type DB struct {
	conn         *sql.DB
	path         string
	needsRebuild bool
}

// Open opens (or creates) the SQLite database at path and applies the schema.
// When the stored schema version disagrees with this build the store is reset
// to an empty index at the current version and NeedsRebuild reports true.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db dir: %v", apperr.ErrStorageUnavailable, err)
		}
	}
	conn, err := sql.Open(driverName, path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %v", apperr.ErrStorageUnavailable, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: ping: %v", apperr.ErrStorageUnavailable, err)
	}
	db := &DB{conn: conn, path: path}
	if err := db.applySchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) applySchema() error {
	if _, err := db.conn.Exec(coreSchemaSQL); err != nil {
		return fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(db.conn); err != nil {
		return fmt.Errorf("index: apply fts schema: %w", err)
	}
	if err := db.reconcileVersion(); err != nil {
		return err
	}
	return db.reconcileFTS()
}

func (db *DB) reconcileVersion() error {
	stored, err := db.metaGet(metaSchemaVersion)
	if err != nil {
		return err
	}
	switch stored {
	case schemaVersion:
		last, lastErr := db.metaGet(metaLastIndexTime)
		if lastErr != nil {
			return lastErr
		}
		if last == "" {
			db.needsRebuild = true
		}
		return nil
	case "":
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM files`).Scan(&count); err != nil {
			return fmt.Errorf("index: count: %w", err)
		}
		if count == 0 {
			db.needsRebuild = true
			return db.metaSet(metaSchemaVersion, schemaVersion)
		}
		// Populated pre-versioning store: treat as a mismatch.
		return db.reset()
	default:
		return db.reset()
	}
}

// reset drops and recreates every table at the current schema version.
func (db *DB) reset() error {
	if err := dropFTS(db.conn); err != nil {
		return fmt.Errorf("index: drop fts: %w", err)
	}
	for _, stmt := range []string{`DROP TABLE IF EXISTS files`, `DROP TABLE IF EXISTS meta`} {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("index: reset: %w", err)
		}
	}
	if _, err := db.conn.Exec(coreSchemaSQL); err != nil {
		return fmt.Errorf("index: recreate schema: %w", err)
	}
	if err := initFTS(db.conn); err != nil {
		return fmt.Errorf("index: recreate fts schema: %w", err)
	}
	db.needsRebuild = true
	return db.metaSet(metaSchemaVersion, schemaVersion)
}

// reconcileFTS forces a rebuild when the store was written by a build with
// the opposite full-text capability. Leftover triggers from an FTS5 build
// would break every write in a build without the fts5 module, and an FTS5
// build opening a fallback-era store would serve token queries from an empty
// full-text index.
func (db *DB) reconcileFTS() error {
	stored, err := db.metaGet(metaFTSEnabled)
	if err != nil {
		return err
	}
	current := "0"
	if db.FullTextAvailable() {
		current = "1"
	}
	if stored == current {
		return nil
	}
	if stored != "" {
		if err := dropFTS(db.conn); err != nil {
			return fmt.Errorf("index: drop fts: %w", err)
		}
		if err := initFTS(db.conn); err != nil {
			return fmt.Errorf("index: recreate fts schema: %w", err)
		}
		db.needsRebuild = true
	}
	return db.metaSet(metaFTSEnabled, current)
}

// NeedsRebuild reports whether the store has no usable index contents: it has
// never been populated, it was reset because of a schema version mismatch, or
// it was written by a build with the opposite full-text capability.
func (db *DB) NeedsRebuild() bool {
	return db.needsRebuild
}

func (db *DB) metaGet(key string) (string, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: meta get %s: %w", key, err)
	}
	return v, nil
}

func (db *DB) metaSet(key, value string) error {
	if _, err := db.conn.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("index: meta set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
