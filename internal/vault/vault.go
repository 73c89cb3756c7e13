// Package vault provides access to the note vault backing the
// assistant: the active document, the file listing, and plain
// read/write operations. The core consumes the Store interface only;
// the concrete store is handed in by the outer harness.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// ErrNotFound indicates the requested file does not exist in the vault.
var ErrNotFound = errors.New("file not found")

// Document is the currently open note, if any.
type Document struct {
	Name    string
	Content string
}

// FileInfo identifies one vault file.
type FileInfo struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Store is the narrow interface the core uses to reach the vault.
type Store interface {
	// ActiveDocument returns the currently open note, or false when no
	// note is open.
	ActiveDocument() (Document, bool)
	// ListFiles returns all vault files in path order.
	ListFiles() []FileInfo
	// ListFilesWithPrefix returns the vault files whose path starts
	// with the given prefix, in path order.
	ListFilesWithPrefix(prefix string) []FileInfo
	// ReadFile returns the content of the file at path, or ErrNotFound.
	ReadFile(path string) (string, error)
	// WriteFile replaces the content of the file at path, creating it
	// and any parent directories as needed.
	WriteFile(path string, content string) error
	// Root returns the vault root on the host filesystem, used as the
	// working directory for local executable invocations.
	Root() string
}

// FsStore is an afero-backed Store. Production use wraps the OS
// filesystem rooted at the vault directory; tests use the in-memory
// filesystem.
type FsStore struct {
	fs   afero.Fs
	root string

	mu     sync.RWMutex
	active string
}

// NewDirStore opens the vault rooted at the given OS directory.
func NewDirStore(root string) *FsStore {
	return &FsStore{
		fs:   afero.NewBasePathFs(afero.NewOsFs(), root),
		root: root,
	}
}

// NewMemStore creates an empty in-memory vault, primarily for tests.
func NewMemStore() *FsStore {
	return &FsStore{fs: afero.NewMemMapFs(), root: "."}
}

// SetActive marks the note at path as the open document. An empty path
// clears the active document.
func (s *FsStore) SetActive(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = path
}

// ActiveDocument returns the marked open note, reading its current
// content from the vault. A marked note that no longer exists reports
// no active document.
func (s *FsStore) ActiveDocument() (Document, bool) {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()

	if active == "" {
		return Document{}, false
	}
	content, err := s.ReadFile(active)
	if err != nil {
		return Document{}, false
	}
	return Document{Name: path.Base(active), Content: content}, true
}

// ListFiles returns every file in the vault, sorted by path.
func (s *FsStore) ListFiles() []FileInfo {
	var files []FileInfo
	err := afero.Walk(s.fs, ".", func(p string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		files = append(files, FileInfo{Path: normalize(p), Name: info.Name()})
		return nil
	})
	if err != nil {
		return nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// ListFilesWithPrefix filters ListFiles down to paths with the prefix.
func (s *FsStore) ListFilesWithPrefix(prefix string) []FileInfo {
	var matched []FileInfo
	for _, f := range s.ListFiles() {
		if strings.HasPrefix(f.Path, prefix) {
			matched = append(matched, f)
		}
	}
	return matched
}

// ReadFile returns the content of the vault file at path.
func (s *FsStore) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return string(data), nil
}

// WriteFile writes content to the vault file at path, creating parent
// directories as needed.
func (s *FsStore) WriteFile(p string, content string) error {
	if dir := path.Dir(p); dir != "." && dir != "/" {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
	}
	if err := afero.WriteFile(s.fs, p, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// Root returns the OS path the vault was opened at.
func (s *FsStore) Root() string {
	return s.root
}

// normalize strips the leading "./" afero.Walk can produce so vault
// paths are stable map keys.
func normalize(p string) string {
	return strings.TrimPrefix(p, "./")
}
