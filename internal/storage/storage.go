// Package storage provides a small file store addressed by paths
// relative to a root directory, keeping callers independent of the
// physical location of asset sources and derived outputs.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"media-converter/internal/logging"
)

// Store manages files under a single root directory.
type Store struct {
	root string
}

// New creates a Store rooted at root, creating the directory if
// needed.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

// Path resolves a storage-relative path to an absolute one.
func (s *Store) Path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Save writes the reader's contents to rel, creating parent
// directories as needed. Returns the number of bytes written.
func (s *Store) Save(rel string, r io.Reader) (int64, error) {
	abs := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", rel, err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		// Half-written files are worse than no file.
		if rmErr := os.Remove(abs); rmErr != nil {
			logging.Warn("failed to remove partial file %s: %v", abs, rmErr)
		}
		return n, fmt.Errorf("failed to write %s: %w", rel, err)
	}

	return n, nil
}

// Adopt moves an existing file (typically a finished temp output)
// into the store at rel. Falls back to copy+remove when rename
// crosses filesystems.
func (s *Store) Adopt(src, rel string) error {
	abs := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	if err := os.Rename(src, abs); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			logging.Warn("failed to close %s: %v", src, err)
		}
	}()

	if _, err := s.Save(rel, in); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		logging.Warn("failed to remove source file %s after copy: %v", src, err)
	}
	return nil
}

// Open opens the file at rel for reading.
func (s *Store) Open(rel string) (*os.File, error) {
	return os.Open(s.Path(rel))
}

// Exists reports whether a file exists at rel.
func (s *Store) Exists(rel string) bool {
	info, err := os.Stat(s.Path(rel))
	return err == nil && !info.IsDir()
}

// Size returns the size in bytes of the file at rel.
func (s *Store) Size(rel string) (int64, error) {
	info, err := os.Stat(s.Path(rel))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Delete removes the file at rel. A missing file is not an error:
// deletion is used on cleanup paths where the file may never have
// been produced.
func (s *Store) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(s.Path(rel))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", rel, err)
	}
	return nil
}

// UniqueRel returns a storage-relative path under dir that does not
// collide with an existing file, suffixing the base name with a
// counter when necessary.
func (s *Store) UniqueRel(dir, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	rel := dir + "/" + filename
	for i := 1; s.Exists(rel); i++ {
		rel = fmt.Sprintf("%s/%s-%d%s", dir, base, i, ext)
	}
	return rel
}
