package kv_test

import (
	"testing"

	"bitacora-go/internal/config"
	"bitacora-go/internal/kv"
)

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		s, err := kv.NewStoreFromConfig(config.StoreConfig{Type: "sqlite", DataDir: t.TempDir()}, "dev1")
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer s.Close()
		if _, ok := s.(*kv.SQLiteStore); !ok {
			t.Errorf("store type = %T, want *kv.SQLiteStore", s)
		}
	})

	t.Run("empty type defaults to sqlite", func(t *testing.T) {
		s, err := kv.NewStoreFromConfig(config.StoreConfig{DataDir: t.TempDir()}, "dev1")
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer s.Close()
		if _, ok := s.(*kv.SQLiteStore); !ok {
			t.Errorf("store type = %T, want *kv.SQLiteStore", s)
		}
	})

	t.Run("sqlite requires data_dir", func(t *testing.T) {
		if _, err := kv.NewStoreFromConfig(config.StoreConfig{Type: "sqlite"}, "dev1"); err == nil {
			t.Fatal("expected error for missing data_dir")
		}
	})

	t.Run("memory", func(t *testing.T) {
		s, err := kv.NewStoreFromConfig(config.StoreConfig{Type: "memory"}, "dev1")
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer s.Close()
		if _, ok := s.(*kv.MemoryStore); !ok {
			t.Errorf("store type = %T, want *kv.MemoryStore", s)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := kv.NewStoreFromConfig(config.StoreConfig{Type: "redis"}, "dev1"); err == nil {
			t.Fatal("expected error for unknown store type")
		}
	})
}
