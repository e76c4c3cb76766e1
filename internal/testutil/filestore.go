package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"bitacora-go/internal/core"
)

// MockFileStore is an in-memory core.FileStore for tests. Paths are treated
// as opaque keys; directories only need to be "ensured" before use.
// Safe for concurrent use.
type MockFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool

	// FailDelete makes Delete return this error for matching paths.
	FailDelete map[string]error
}

var _ core.FileStore = (*MockFileStore)(nil)

// NewMockFileStore creates an empty mock filesystem.
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{
		files:      make(map[string][]byte),
		dirs:       make(map[string]bool),
		FailDelete: make(map[string]error),
	}
}

// AddFile puts a file into the mock filesystem.
func (m *MockFileStore) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

// HasFile reports whether a file exists at path.
func (m *MockFileStore) HasFile(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

// Content returns the stored bytes at path, nil when absent.
func (m *MockFileStore) Content(path string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[path]
}

func (m *MockFileStore) EnsureDir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[dir] = true
	return nil
}

func (m *MockFileStore) Move(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[src]
	if !ok {
		return fmt.Errorf("move %s: %w", src, fs.ErrNotExist)
	}
	m.files[dst] = data
	delete(m.files, src)
	return nil
}

func (m *MockFileStore) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailDelete[path]; ok {
		return err
	}
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("delete %s: %w", path, fs.ErrNotExist)
	}
	delete(m.files, path)
	return nil
}

func (m *MockFileStore) ReadText(path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	return string(data), nil
}

func (m *MockFileStore) WriteText(path string, data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = []byte(data)
	return nil
}

func (m *MockFileStore) Open(path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockFileStore) Create(path string) (io.WriteCloser, error) {
	return &mockWriter{store: m, path: path}, nil
}

// mockWriter buffers writes and commits them to the store on Close.
type mockWriter struct {
	store *MockFileStore
	path  string
	buf   bytes.Buffer
}

func (w *mockWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *mockWriter) Close() error {
	w.store.AddFile(w.path, w.buf.Bytes())
	return nil
}
