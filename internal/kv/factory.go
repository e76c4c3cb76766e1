package kv

import (
	"fmt"
	"path/filepath"

	"bitacora-go/internal/config"
	"bitacora-go/internal/core"
)

// NewStoreFromConfig creates a KVStore implementation based on the store config type.
func NewStoreFromConfig(cfg config.StoreConfig, deviceID string) (core.KVStore, error) {
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, deviceID+".db"))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
