package index

import "github.com/starford/raido/internal/models"

// Store is the path-store surface the rebuild and query engines operate on.
type Store interface {
	ReplaceAll(entries []models.Entry, policy string) error
	QueryTokens(query string, limit int) ([]models.Hit, error)
	QueryFallback(query string, limit int, caseSensitive bool) ([]models.Entry, error)
	QueryFallbackRegex(pattern string, limit int, caseSensitive bool) ([]models.Entry, error)
	FullTextAvailable() bool
	Count() (int, error)
	Stats() (models.Stats, error)
	NeedsRebuild() bool
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
