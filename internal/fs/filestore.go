package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"bitacora-go/internal/core"
)

// OSFileStore is the real filesystem implementation of core.FileStore.
type OSFileStore struct{}

var _ core.FileStore = (*OSFileStore)(nil)

// NewOSFileStore creates a file store that operates on the real filesystem.
func NewOSFileStore() *OSFileStore {
	return &OSFileStore{}
}

// EnsureDir creates dir and any missing parents.
func (s *OSFileStore) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// Move relocates src to dst. Rename is tried first; when src and dst are on
// different filesystems (capture temp dirs often are) it falls back to
// copy-then-remove.
func (s *OSFileStore) Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("moving file: %w", err)
	}

	if err := s.copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing source after copy: %w", err)
	}
	return nil
}

// Delete removes the file at path.
func (s *OSFileStore) Delete(path string) error {
	return os.Remove(path)
}

// ReadText returns the file's contents. A missing file surfaces as an error
// satisfying errors.Is(err, fs.ErrNotExist).
func (s *OSFileStore) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteText atomically replaces the file at path with data: the content is
// written to a temp file in the same directory and renamed into place, so
// readers never observe a partial write.
func (s *OSFileStore) WriteText(path string, data string) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.WriteString(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Open opens the file at path for reading.
func (s *OSFileStore) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Create creates or truncates the file at path for writing.
func (s *OSFileStore) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (s *OSFileStore) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("closing destination: %w", err)
	}
	return nil
}
