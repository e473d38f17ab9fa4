package walk

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/testutil"
)

func collect(t *testing.T, w *Walker) ([]models.Entry, int) {
	t.Helper()
	var entries []models.Entry
	warnings, err := w.Walk(context.Background(), func(e models.Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	return entries, warnings
}

func paths(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestWalkExtensionFilter(t *testing.T) {
	root := testutil.TestTree(t,
		"projects/char_body.ma",
		"projects/char_head.mb",
		"projects/notes.txt",
	)

	w := New(Policy{Roots: []string{root}, Extensions: []string{".ma", ".mb"}})
	entries, warnings := collect(t, w)

	assert.Zero(t, warnings)
	assert.ElementsMatch(t, []string{
		NormalizePath(filepath.Join(root, "projects/char_body.ma")),
		NormalizePath(filepath.Join(root, "projects/char_head.mb")),
	}, paths(entries))
}

func TestWalkExtensionCaseInsensitive(t *testing.T) {
	root := testutil.TestTree(t, "scene.MA")

	w := New(Policy{Roots: []string{root}, Extensions: []string{"ma"}})
	entries, _ := collect(t, w)

	require.Len(t, entries, 1)
	assert.Equal(t, ".ma", entries[0].Ext)
}

func TestWalkNoExtensionsKeepsAllFiles(t *testing.T) {
	root := testutil.TestTree(t, "a.ma", "b.txt")

	w := New(Policy{Roots: []string{root}})
	entries, _ := collect(t, w)

	assert.Len(t, entries, 2)
}

func TestWalkIncludeFolders(t *testing.T) {
	root := testutil.TestTree(t, "projects/rigs/char_body.ma")

	w := New(Policy{Roots: []string{root}, IncludeFolders: true})
	entries, _ := collect(t, w)

	var dirs, files int
	for _, e := range entries {
		if e.IsDir {
			dirs++
		} else {
			files++
		}
	}
	assert.Equal(t, 2, dirs, "projects and rigs, not the root itself")
	assert.Equal(t, 1, files)
}

func TestWalkRootNotIndexed(t *testing.T) {
	root := testutil.TestTree(t, "sub/")

	w := New(Policy{Roots: []string{root}, IncludeFolders: true})
	entries, _ := collect(t, w)

	require.Len(t, entries, 1)
	assert.Equal(t, "sub", entries[0].Name)
}

func TestWalkMissingRootWarns(t *testing.T) {
	root := testutil.TestTree(t, "scene.ma")

	w := New(Policy{Roots: []string{filepath.Join(root, "does-not-exist"), root}})
	entries, warnings := collect(t, w)

	assert.Equal(t, 1, warnings)
	assert.Len(t, entries, 1, "valid root still walked")
}

func TestWalkFileRootWarns(t *testing.T) {
	root := testutil.TestTree(t, "scene.ma")

	w := New(Policy{Roots: []string{filepath.Join(root, "scene.ma")}})
	entries, warnings := collect(t, w)

	assert.Equal(t, 1, warnings)
	assert.Empty(t, entries)
}

func TestWalkCancellation(t *testing.T) {
	root := testutil.TestTree(t, "a.ma", "b.ma", "c.ma")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(Policy{Roots: []string{root}})
	_, err := w.Walk(ctx, func(models.Entry) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalkCallbackErrorAborts(t *testing.T) {
	root := testutil.TestTree(t, "a.ma", "b.ma")

	w := New(Policy{Roots: []string{root}})
	calls := 0
	_, err := w.Walk(context.Background(), func(models.Entry) error {
		calls++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestWalkEntryFields(t *testing.T) {
	root := testutil.TestTree(t, "projects/char_body.ma")

	w := New(Policy{Roots: []string{root}})
	entries, _ := collect(t, w)

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "char_body.ma", e.Name)
	assert.Equal(t, ".ma", e.Ext)
	assert.Equal(t, NormalizePath(filepath.Join(root, "projects")), e.Parent)
	assert.False(t, e.IsDir)
	assert.Positive(t, e.Size)
	assert.Positive(t, e.Modified)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/a/b", NormalizePath("/a/b/"))
	assert.Equal(t, "/a/b", NormalizePath("/a//b"))
	assert.Equal(t, "/", NormalizePath("/"))
}

func TestPolicyFingerprint(t *testing.T) {
	a := Policy{Roots: []string{"/b", "/a"}, Extensions: []string{".ma", ".mb"}}
	b := Policy{Roots: []string{"/a", "/b"}, Extensions: []string{"MB", "ma"}}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "order and spelling should not matter")

	c := Policy{Roots: []string{"/a", "/b"}, Extensions: []string{".ma"}}
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	d := a
	d.IncludeFolders = true
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}
