package core

import "io"

// Vault is an off-device storage backend for journal exports.
// All operations stream through io.Reader/io.Writer so large video files are
// never held in memory whole.
type Vault interface {
	// PutContent stores the backing file of the entry with the given ID.
	// Storing the same ID twice overwrites; entry IDs never change, so the
	// operation is effectively idempotent.
	PutContent(id string, r io.Reader) error

	// GetContent retrieves an entry's backing file and writes it to w.
	GetContent(id string, w io.Writer) error

	// PutIndex stores the journal index for a device along with a version
	// marker used to order exports.
	PutIndex(deviceID string, r io.Reader, version int64) error

	// GetIndex retrieves the journal index for a device and writes it to w.
	GetIndex(deviceID string, w io.Writer) error

	// IndexVersion returns the version of the stored index for a device.
	// Returns 0 if no index has been stored.
	IndexVersion(deviceID string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
