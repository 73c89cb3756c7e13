package assembler

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/vault"
)

func TestBuild_WithActiveDocument(t *testing.T) {
	store := vault.NewMemStore()
	require.NoError(t, store.WriteFile("notes/today.md", "# Today\nDo the thing."))
	require.NoError(t, store.WriteFile("notes/ideas.md", "ideas"))
	store.SetActive("notes/today.md")

	blob := New(store).Build()

	assert.Contains(t, blob, "Current file (today.md):\n# Today\nDo the thing.")
	assert.Contains(t, blob, "Vault files: notes/ideas.md, notes/today.md")
}

func TestBuild_NoActiveDocument(t *testing.T) {
	store := vault.NewMemStore()
	require.NoError(t, store.WriteFile("a.md", "a"))

	blob := New(store).Build()

	assert.NotContains(t, blob, "Current file")
	assert.Contains(t, blob, "Vault files: a.md")
}

func TestBuild_TruncatesDocument(t *testing.T) {
	store := vault.NewMemStore()
	long := strings.Repeat("x", MaxDocumentChars+500)
	require.NoError(t, store.WriteFile("big.md", long))
	store.SetActive("big.md")

	blob := New(store).Build()

	assert.Contains(t, blob, strings.Repeat("x", MaxDocumentChars))
	assert.NotContains(t, blob, strings.Repeat("x", MaxDocumentChars+1))
}

func TestBuild_TruncatesOnRuneBoundary(t *testing.T) {
	store := vault.NewMemStore()
	// 3-byte runes leave the byte cap mid-rune; the cut must back up
	// instead of emitting a partial sequence.
	long := strings.Repeat("€", MaxDocumentChars)
	require.NoError(t, store.WriteFile("euros.md", long))
	store.SetActive("euros.md")

	blob := New(store).Build()

	assert.True(t, utf8.ValidString(blob))
	// the cap still holds after backing up
	assert.NotContains(t, blob, strings.Repeat("€", MaxDocumentChars/3+1))
}

func TestBuild_CapsFileListing(t *testing.T) {
	store := vault.NewMemStore()
	for i := 0; i < MaxListedFiles+10; i++ {
		require.NoError(t, store.WriteFile(fmt.Sprintf("n%03d.md", i), "x"))
	}

	blob := New(store).Build()

	listed := strings.Split(strings.TrimPrefix(blob, "\n\nVault files: "), ", ")
	assert.Len(t, listed, MaxListedFiles)
}
