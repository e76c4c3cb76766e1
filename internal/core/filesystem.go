package core

import "io"

// FileStore abstracts the filesystem operations the journal needs.
// Implementations report a missing file by returning an error satisfying
// errors.Is(err, fs.ErrNotExist).
type FileStore interface {
	// EnsureDir creates dir (and parents) if it does not exist.
	EnsureDir(dir string) error

	// Move relocates src to dst. It must work across filesystems, since
	// capture temp files may live on a different mount than the media dir.
	Move(src, dst string) error

	// Delete removes the file at path.
	Delete(path string) error

	// ReadText returns the contents of the file at path.
	ReadText(path string) (string, error)

	// WriteText replaces the file at path with data. The replacement must be
	// atomic: readers never observe a partially written file.
	WriteText(path string, data string) error

	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)

	// Create creates or truncates the file at path for writing.
	Create(path string) (io.WriteCloser, error)
}
