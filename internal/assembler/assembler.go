// Package assembler builds the ambient context blob sent alongside each
// prompt: an excerpt of the open note plus a bounded listing of vault
// files. Both sections are capped so the outbound request stays small.
package assembler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"inkwell/internal/vault"
)

// Caps bounding the assembled context. Truncation is silent.
const (
	// MaxDocumentChars is the largest excerpt taken from the open note.
	MaxDocumentChars = 2000
	// MaxListedFiles is the largest number of vault paths included.
	MaxListedFiles = 50
)

// Assembler gathers ambient vault state into a single text blob.
type Assembler struct {
	store vault.Store
}

// New creates an assembler reading from the given vault store.
func New(store vault.Store) *Assembler {
	return &Assembler{store: store}
}

// Build returns the context blob: the current document section when a
// note is open, followed by the known files section. Side effect free.
func (a *Assembler) Build() string {
	var b strings.Builder

	if doc, ok := a.store.ActiveDocument(); ok {
		fmt.Fprintf(&b, "\n\nCurrent file (%s):\n%s", doc.Name, excerpt(doc.Content))
	}

	files := a.store.ListFiles()
	if len(files) > MaxListedFiles {
		files = files[:MaxListedFiles]
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	fmt.Fprintf(&b, "\n\nVault files: %s", strings.Join(paths, ", "))

	return b.String()
}

// excerpt caps the note content, backing up so the cut never splits a
// multi-byte rune.
func excerpt(content string) string {
	if len(content) <= MaxDocumentChars {
		return content
	}
	cut := MaxDocumentChars
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
