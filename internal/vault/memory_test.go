package vault_test

import (
	"bytes"
	"strings"
	"testing"

	"bitacora-go/internal/vault"
)

func TestMemoryVault(t *testing.T) {
	t.Run("content round-trip", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

		if err := v.PutContent("e1", strings.NewReader("data")); err != nil {
			t.Fatalf("PutContent() error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.GetContent("e1", &buf); err != nil {
			t.Fatalf("GetContent() error = %v", err)
		}
		if buf.String() != "data" {
			t.Errorf("GetContent() = %q", buf.String())
		}
	})

	t.Run("missing content", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

		var buf bytes.Buffer
		if err := v.GetContent("nope", &buf); err == nil {
			t.Fatal("GetContent() expected error for missing entry")
		}
	})

	t.Run("index version tracks the latest put", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

		if version, _ := v.IndexVersion("dev1"); version != 0 {
			t.Errorf("IndexVersion() = %d before any put, want 0", version)
		}

		if err := v.PutIndex("dev1", strings.NewReader("[]"), 1); err != nil {
			t.Fatal(err)
		}
		if err := v.PutIndex("dev1", strings.NewReader(`[{"id":"1"}]`), 2); err != nil {
			t.Fatal(err)
		}

		version, err := v.IndexVersion("dev1")
		if err != nil || version != 2 {
			t.Errorf("IndexVersion() = (%d, %v), want (2, nil)", version, err)
		}

		var buf bytes.Buffer
		if err := v.GetIndex("dev1", &buf); err != nil {
			t.Fatalf("GetIndex() error = %v", err)
		}
		if buf.String() != `[{"id":"1"}]` {
			t.Errorf("GetIndex() = %q, want latest index", buf.String())
		}
	})

	t.Run("validate always succeeds", func(t *testing.T) {
		if err := vault.NewMemoryVault("test").ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}
