// Package models defines the domain types for Raido.
package models

import (
	"path"
	"strings"
)

// Entry represents one indexed filesystem path under an indexed root.
// Path uses forward slashes with no trailing slash and is unique within
// the store. Parent is always a prefix of Path.
type Entry struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Ext      string `json:"ext,omitempty"`
	Parent   string `json:"parent"`
	IsDir    bool   `json:"is_dir"`
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"` // unix seconds
}

// NewEntry builds an Entry from an already-normalized slash path.
// Ext is empty for directories.
func NewEntry(p string, isDir bool, size, modified int64) Entry {
	e := Entry{
		Path:     p,
		Name:     path.Base(p),
		Parent:   path.Dir(p),
		IsDir:    isDir,
		Size:     size,
		Modified: modified,
	}
	if !isDir {
		e.Ext = strings.ToLower(path.Ext(e.Name))
	}
	return e
}

// Hit is one full-text match with its computed rank.
type Hit struct {
	Entry Entry
	// ExactMatches is the number of query tokens that matched an entry token
	// exactly rather than as a prefix. More exact matches rank higher.
	ExactMatches int
}

// Stats summarizes the current state of the index database.
type Stats struct {
	TotalItems  int    `json:"total_items"`
	LastIndexed int64  `json:"last_indexed"` // unix seconds, 0 when never indexed
	DBSizeBytes int64  `json:"db_size_bytes"`
	DBPath      string `json:"db_path"`
	Policy      string `json:"policy,omitempty"` // fingerprint of the indexing policy
}
