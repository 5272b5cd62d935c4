// Package artifact manages the scratch directory for transient media files.
package artifact

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store allocates collision-free paths inside a scratch root and deletes
// them after use. Paths outside the root are never touched.
type Store struct {
	root string
}

// NewStore creates the scratch directory if absent.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scratch root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create scratch root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the scratch directory.
func (s *Store) Root() string {
	return s.root
}

// NewFile returns a fresh file path with the given extension (without
// dot). The file itself is not created.
func (s *Store) NewFile(ext string) string {
	return filepath.Join(s.root, uuid.New().String()+"."+ext)
}

// NewDir creates and returns a fresh subdirectory, used for photo
// carousels.
func (s *Store) NewDir() (string, error) {
	dir := filepath.Join(s.root, uuid.New().String())
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	return dir, nil
}

// Contains reports whether path is inside the scratch root.
func (s *Store) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Remove deletes a file or directory tree. Missing paths are silently
// ignored; paths outside the root are refused.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if !s.Contains(path) || filepath.Clean(path) == s.root {
		log.Printf("artifact: refusing to remove %s (outside scratch root)", path)
		return
	}
	if err := os.RemoveAll(path); err != nil {
		log.Printf("artifact: remove %s: %v", path, err)
	}
}

// RemoveAll deletes every given path.
func (s *Store) RemoveAll(paths []string) {
	for _, p := range paths {
		s.Remove(p)
	}
}
