// Package walk enumerates filesystem entries under the configured index
// roots, applying the extension and folder-inclusion policy.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/models"
)

// Policy describes what gets indexed: which roots to walk, which file
// extensions to keep (empty = all), and whether folders themselves are
// indexed alongside files.
type Policy struct {
	Roots          []string
	Extensions     []string
	IncludeFolders bool
}

// Fingerprint returns a stable digest of the policy. The store records it at
// commit time so the host can detect that the on-disk index was built under
// different roots or filters.
func (p Policy) Fingerprint() string {
	roots := make([]string, 0, len(p.Roots))
	for _, r := range p.Roots {
		roots = append(roots, NormalizePath(r))
	}
	sort.Strings(roots)

	exts := make([]string, 0, len(p.Extensions))
	for ext := range normalizeExtensions(p.Extensions) {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	canonical := fmt.Sprintf("roots=%s;exts=%s;folders=%t",
		strings.Join(roots, ","), strings.Join(exts, ","), p.IncludeFolders)
	return checksum.Sum([]byte(canonical))
}

// Walker walks every policy root and yields normalized entries.
type Walker struct {
	policy Policy
	exts   map[string]struct{}
}

// New creates a Walker for the given policy. Extensions are normalized to
// lower case with a leading dot.
func New(policy Policy) *Walker {
	return &Walker{policy: policy, exts: normalizeExtensions(policy.Extensions)}
}

// Walk visits every entry admitted by the policy and passes it to fn.
// It returns the number of warnings: invalid roots and unreadable subtrees
// are counted and skipped rather than aborting the walk, so one
// permission-denied folder never stops indexing of its siblings.
//
// Cancellation is checked on every directory entry, bounding cancellation
// latency regardless of tree size. A cancelled walk returns ctx.Err().
// Any error returned by fn aborts the walk and is returned as-is.
func (w *Walker) Walk(ctx context.Context, fn func(models.Entry) error) (warnings int, err error) {
	for _, root := range w.policy.Roots {
		abs, absErr := filepath.Abs(root)
		if absErr != nil {
			warnings++
			continue
		}
		info, statErr := os.Stat(abs)
		if statErr != nil || !info.IsDir() {
			warnings++
			continue
		}

		walkErr := filepath.WalkDir(abs, func(p string, d fs.DirEntry, visitErr error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if visitErr != nil {
				// Unreadable subtree: record and move on.
				warnings++
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if p == abs {
					return nil // roots themselves are not indexed
				}
				if !w.policy.IncludeFolders {
					return nil
				}
				return w.yield(p, d, fn)
			}

			if len(w.exts) > 0 {
				ext := strings.ToLower(filepath.Ext(d.Name()))
				if _, ok := w.exts[ext]; !ok {
					return nil
				}
			}
			return w.yield(p, d, fn)
		})
		if walkErr != nil {
			return warnings, walkErr
		}
	}
	return warnings, nil
}

func (w *Walker) yield(p string, d fs.DirEntry, fn func(models.Entry) error) error {
	info, err := d.Info()
	if err != nil {
		// Entry vanished between readdir and stat; skip it.
		return nil
	}
	var size int64
	if !d.IsDir() {
		size = info.Size()
	}
	return fn(models.NewEntry(NormalizePath(p), d.IsDir(), size, info.ModTime().Unix()))
}

// NormalizePath converts p to forward slashes and strips any trailing slash.
func NormalizePath(p string) string {
	s := filepath.ToSlash(filepath.Clean(p))
	if len(s) > 1 && strings.HasSuffix(s, "/") {
		s = strings.TrimSuffix(s, "/")
	}
	return s
}

func normalizeExtensions(exts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = struct{}{}
	}
	return out
}
