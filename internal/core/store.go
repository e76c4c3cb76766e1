package core

// KVStore is the durable key-value persistence the registry and event store
// write through. Values are whole JSON documents: every logical update reads
// the full document, mutates it in memory, and writes it back. Callers are
// responsible for serializing writers per key.
type KVStore interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any existing value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Close releases the underlying store.
	Close() error
}
