package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"bitacora-go/internal/core"
)

// MemoryVault is an in-memory implementation of the Vault interface,
// useful for tests. Safe for concurrent use.
type MemoryVault struct {
	name         string
	content      map[string][]byte // entry ID -> content
	index        map[string][]byte // device ID -> index document
	indexVersion map[string]int64  // device ID -> version
	mu           sync.RWMutex
}

var _ core.Vault = (*MemoryVault)(nil)

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:         name,
		content:      make(map[string][]byte),
		index:        make(map[string][]byte),
		indexVersion: make(map[string]int64),
	}
}

// PutContent stores an entry's backing file.
func (m *MemoryVault) PutContent(id string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[id] = data
	return nil
}

// GetContent retrieves an entry's backing file.
func (m *MemoryVault) GetContent(id string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.content[id]
	if !ok {
		return fmt.Errorf("content not found: %s", id)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}

	return nil
}

// PutIndex stores the index document for a device.
func (m *MemoryVault) PutIndex(deviceID string, r io.Reader, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.index[deviceID] = data
	m.indexVersion[deviceID] = version
	return nil
}

// GetIndex retrieves the index document for a device.
func (m *MemoryVault) GetIndex(deviceID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.index[deviceID]
	if !ok {
		return fmt.Errorf("index not found for device: %s", deviceID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	return nil
}

// IndexVersion returns the export version for a device.
// Returns 0 if no index has been stored.
func (m *MemoryVault) IndexVersion(deviceID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexVersion[deviceID], nil
}

// ValidateSetup always succeeds for the in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}
