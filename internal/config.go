package internal

import (
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/live"
	"github.com/starford/raido/internal/search"
	"github.com/starford/raido/internal/walk"
)

// Config represents the application configuration. The engine treats it as
// an immutable snapshot: every recognized option is enumerated here and
// passed by value into engine calls, never mutated at a distance.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Index  IndexConfig       `yaml:"index"`
	Search SearchConfig      `yaml:"search"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Search.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SQLiteConfig holds the index database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// IndexConfig holds the indexing policy: which roots to walk and what to keep.
type IndexConfig struct {
	Roots               []string `yaml:"roots"`
	Extensions          []string `yaml:"extensions"`
	IncludeFolders      bool     `yaml:"include_folders"`
	AutoRebuildOnLaunch bool     `yaml:"auto_rebuild_on_launch"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Roots, validation.Each(validation.Required)),
	)
}

// Policy returns the walk policy this configuration describes.
func (c *IndexConfig) Policy() walk.Policy {
	return walk.Policy{
		Roots:          c.Roots,
		Extensions:     c.Extensions,
		IncludeFolders: c.IncludeFolders,
	}
}

// SearchConfig holds query behavior.
type SearchConfig struct {
	FullTextEnabled bool `yaml:"full_text_enabled"`
	MaxResults      int  `yaml:"max_results"`
	CaseSensitive   bool `yaml:"case_sensitive"`
	Regex           bool `yaml:"regex"`
	DebounceEnabled bool `yaml:"debounce_enabled"`
	DebounceMS      int  `yaml:"debounce_ms"`
	LiveEnabled     bool `yaml:"live_enabled"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxResults, validation.Required, validation.Min(1), validation.Max(5000)),
		validation.Field(&c.DebounceMS, validation.Min(0), validation.Max(2000)),
	)
}

// Options returns the per-call search options this configuration describes.
func (c *SearchConfig) Options() search.Options {
	return search.Options{
		Limit:         c.MaxResults,
		FullText:      c.FullTextEnabled,
		CaseSensitive: c.CaseSensitive,
		Regex:         c.Regex,
	}
}

// Dispatch returns the live-search dispatch configuration.
func (c *SearchConfig) Dispatch() live.Config {
	return live.Config{
		Live:     c.LiveEnabled,
		Debounce: c.DebounceEnabled,
		Interval: time.Duration(c.DebounceMS) * time.Millisecond,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		SQLite: SQLiteConfig{
			Path: ".data/raido.db",
		},
		Index: IndexConfig{
			Extensions: []string{".ma", ".mb"},
		},
		Search: SearchConfig{
			FullTextEnabled: true,
			MaxResults:      200,
			DebounceEnabled: true,
			DebounceMS:      200,
			LiveEnabled:     true,
		},
	}
}
