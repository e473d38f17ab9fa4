package index

import (
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// ReplaceAll substitutes the entire store content with entries inside a
// single transaction: either every entry is visible or none is, and on
// failure or rollback the previous contents remain untouched. The FTS table
// is kept in lockstep by the schema triggers, so it commits or rolls back
// with the rows. policy is the fingerprint of the indexing policy the
// entries were built under.
func (db *DB) ReplaceAll(entries []models.Entry, policy string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM files`); err != nil {
		return fmt.Errorf("index: clear files: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO files (path, path_lower, name, ext, parent, is_dir, size, modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		isDir := 0
		if e.IsDir {
			isDir = 1
		}
		if _, err := stmt.Exec(e.Path, strings.ToLower(e.Path), e.Name, e.Ext, e.Parent, isDir, e.Size, e.Modified); err != nil {
			return fmt.Errorf("index: insert %s: %w", e.Path, err)
		}
	}

	now := strconv.FormatInt(time.Now().Unix(), 10)
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?), (?, ?)`,
		metaLastIndexTime, now, metaPolicy, policy); err != nil {
		return fmt.Errorf("index: update meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit replace: %v", apperr.ErrStorageUnavailable, err)
	}
	db.needsRebuild = false
	return nil
}

// QueryFallback matches query against stored paths with substring semantics.
// The query is split on whitespace and every term must occur somewhere in the
// path (name matches are covered since the name is a path suffix). Results
// are ordered by path ascending and capped at limit. Case sensitivity selects
// between the raw path and its lower-cased shadow column.
func (db *DB) QueryFallback(query string, limit int, caseSensitive bool) ([]models.Entry, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	column := "path_lower"
	if caseSensitive {
		column = "path"
	}
	where := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)+1)
	for _, term := range terms {
		if !caseSensitive {
			term = strings.ToLower(term)
		}
		where = append(where, fmt.Sprintf("instr(%s, ?) > 0", column))
		args = append(args, term)
	}
	args = append(args, limit)

	q := fmt.Sprintf(`
		SELECT path, name, ext, parent, is_dir, size, modified
		FROM files
		WHERE %s
		ORDER BY path ASC
		LIMIT ?
	`, strings.Join(where, " AND "))

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: fallback query: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// QueryFallbackRegex matches path or name against a regular expression.
// The pattern is compiled up front: a pattern that does not compile returns
// ErrInvalidPattern before the store is touched. Matching is case-insensitive
// unless caseSensitive is set.
func (db *DB) QueryFallbackRegex(pattern string, limit int, caseSensitive bool) ([]models.Entry, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidPattern, err)
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := db.conn.Query(`
		SELECT path, name, ext, parent, is_dir, size, modified
		FROM files
		WHERE path REGEXP ? OR name REGEXP ?
		ORDER BY path ASC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("index: regex query: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the number of indexed entries.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// Stats reports the current state of the store.
func (db *DB) Stats() (models.Stats, error) {
	total, err := db.Count()
	if err != nil {
		return models.Stats{}, err
	}
	st := models.Stats{TotalItems: total, DBPath: db.path}

	last, err := db.metaGet(metaLastIndexTime)
	if err != nil {
		return models.Stats{}, err
	}
	if last != "" {
		if ts, parseErr := strconv.ParseInt(last, 10, 64); parseErr == nil {
			st.LastIndexed = ts
		}
	}

	policy, err := db.metaGet(metaPolicy)
	if err != nil {
		return models.Stats{}, err
	}
	st.Policy = policy

	if info, statErr := os.Stat(db.path); statErr == nil {
		st.DBSizeBytes = info.Size()
	}
	return st, nil
}

func scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	var out []models.Entry
	for rows.Next() {
		var e models.Entry
		var isDir int
		if err := rows.Scan(&e.Path, &e.Name, &e.Ext, &e.Parent, &isDir, &e.Size, &e.Modified); err != nil {
			return nil, err
		}
		e.IsDir = isDir != 0
		out = append(out, e)
	}
	return out, rows.Err()
}
