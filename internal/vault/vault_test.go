package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	store := NewMemStore()

	require.NoError(t, store.WriteFile("notes/daily/2026-09-01.md", "# Daily"))

	content, err := store.ReadFile("notes/daily/2026-09-01.md")
	require.NoError(t, err)
	assert.Equal(t, "# Daily", content)
}

func TestReadFile_Missing(t *testing.T) {
	store := NewMemStore()

	_, err := store.ReadFile("nope.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiles_SortedByPath(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.WriteFile("b.md", "b"))
	require.NoError(t, store.WriteFile("a/c.md", "c"))
	require.NoError(t, store.WriteFile("a/b.md", "b"))

	files := store.ListFiles()

	require.Len(t, files, 3)
	assert.Equal(t, FileInfo{Path: "a/b.md", Name: "b.md"}, files[0])
	assert.Equal(t, FileInfo{Path: "a/c.md", Name: "c.md"}, files[1])
	assert.Equal(t, FileInfo{Path: "b.md", Name: "b.md"}, files[2])
}

func TestListFilesWithPrefix(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.WriteFile("notes/a.md", "a"))
	require.NoError(t, store.WriteFile("notes/b.md", "b"))
	require.NoError(t, store.WriteFile("journal/c.md", "c"))

	matched := store.ListFilesWithPrefix("notes/")

	require.Len(t, matched, 2)
	assert.Equal(t, "notes/a.md", matched[0].Path)
}

func TestActiveDocument(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.WriteFile("notes/today.md", "todo list"))

	_, ok := store.ActiveDocument()
	assert.False(t, ok, "no active document until one is set")

	store.SetActive("notes/today.md")
	doc, ok := store.ActiveDocument()
	require.True(t, ok)
	assert.Equal(t, "today.md", doc.Name)
	assert.Equal(t, "todo list", doc.Content)

	// clearing works, and a dangling active path reports none
	store.SetActive("")
	_, ok = store.ActiveDocument()
	assert.False(t, ok)

	store.SetActive("notes/deleted.md")
	_, ok = store.ActiveDocument()
	assert.False(t, ok)
}

func TestDirStore_ConfinedToRoot(t *testing.T) {
	root := t.TempDir()
	store := NewDirStore(root)

	require.NoError(t, store.WriteFile("notes/a.md", "hello"))

	data, err := os.ReadFile(filepath.Join(root, "notes", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, root, store.Root())
}
