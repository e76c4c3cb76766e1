package app

import (
	"os"
	"path/filepath"
	"testing"

	"bitacora-go/internal/config"
	"bitacora-go/internal/core"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.NewConfig("testdev", t.TempDir())
	cfg.Store.Type = "memory"
	cfg.Vaults = []config.VaultConfig{{Type: "memory", Name: "test"}}

	a, err := NewApp(cfg, "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func captureFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.tmp")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApp_Sessions(t *testing.T) {
	t.Run("event operations require a login", func(t *testing.T) {
		a := newTestApp(t)

		if _, err := a.ListEvents(); err == nil {
			t.Fatal("ListEvents() expected error without a session")
		}
		if _, err := a.AddEvent(core.Event{Title: "x"}); err == nil {
			t.Fatal("AddEvent() expected error without a session")
		}
	})

	t.Run("seeded account can log in", func(t *testing.T) {
		a := newTestApp(t)

		acct, err := a.Login("juanperez@gmail.com", "juan12345")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if acct.Username != "juanperez" {
			t.Errorf("Username = %q, want juanperez", acct.Username)
		}

		session := a.CurrentSession()
		if session == nil || session.ID != acct.ID {
			t.Errorf("CurrentSession() = %+v, want the logged-in account", session)
		}
	})

	t.Run("logout ends the session", func(t *testing.T) {
		a := newTestApp(t)

		if _, err := a.Login("juanperez@gmail.com", "juan12345"); err != nil {
			t.Fatal(err)
		}
		if err := a.Logout(); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if a.CurrentSession() != nil {
			t.Error("session survived Logout()")
		}
		if _, err := a.ListEvents(); err == nil {
			t.Error("ListEvents() expected error after logout")
		}
	})
}

func TestApp_Events(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.Login("davidisaac@gmail.com", "dvd1234"); err != nil {
		t.Fatal(err)
	}

	draft := core.Event{
		Title:        "Team sync",
		Category:     core.CategoryWork,
		Participants: "David, Bryan",
		Date:         "2024-03-01T09:00:00.000Z",
	}

	events, err := a.AddEvent(draft)
	if err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	if len(events) != 1 || events[0].Title != "Team sync" {
		t.Fatalf("AddEvent() = %+v, want the new event", events)
	}
	id := events[0].ID

	listed, err := a.ListEvents()
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(listed) != 1 || listed[0].ID != id {
		t.Errorf("ListEvents() = %+v", listed)
	}

	found, err := a.UpdateEvent(id, core.Event{Title: "Team sync (moved)", Category: core.CategoryWork, Date: draft.Date})
	if err != nil || !found {
		t.Fatalf("UpdateEvent() = (%v, %v), want (true, nil)", found, err)
	}

	if found, err := a.UpdateEvent("missing-id", draft); err != nil || found {
		t.Errorf("UpdateEvent(missing) = (%v, %v), want (false, nil)", found, err)
	}

	found, err = a.DeleteEvent(id)
	if err != nil || !found {
		t.Fatalf("DeleteEvent() = (%v, %v), want (true, nil)", found, err)
	}
	if listed, _ := a.ListEvents(); len(listed) != 0 {
		t.Errorf("ListEvents() after delete = %+v, want empty", listed)
	}
}

func TestApp_Journal(t *testing.T) {
	t.Run("add, list, delete", func(t *testing.T) {
		a := newTestApp(t)

		entry, err := a.AddEntry(captureFile(t, "photo bytes"), core.MediaPhoto, "harbor at dusk", nil)
		if err != nil {
			t.Fatalf("AddEntry() error = %v", err)
		}
		if _, err := os.Stat(entry.URI); err != nil {
			t.Errorf("no media file at %s: %v", entry.URI, err)
		}

		entries := a.ListEntries(core.Filter{})
		if len(entries) != 1 || entries[0].Note != "harbor at dusk" {
			t.Fatalf("ListEntries() = %+v", entries)
		}

		found, err := a.DeleteEntry(entry.ID)
		if err != nil || !found {
			t.Fatalf("DeleteEntry() = (%v, %v), want (true, nil)", found, err)
		}
		if _, err := os.Stat(entry.URI); !os.IsNotExist(err) {
			t.Errorf("media file survived delete: %v", err)
		}
	})

	t.Run("missing capture file", func(t *testing.T) {
		a := newTestApp(t)

		if _, err := a.AddEntry("/nonexistent/capture.tmp", core.MediaPhoto, "", nil); err == nil {
			t.Fatal("AddEntry() expected error for missing capture file")
		}
	})
}

func TestApp_ExportRestore(t *testing.T) {
	a := newTestApp(t)

	entry, err := a.AddEntry(captureFile(t, "video bytes"), core.MediaVideo, "river crossing", nil)
	if err != nil {
		t.Fatal(err)
	}

	count, err := a.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Export() count = %d, want 1", count)
	}

	// Wipe the local journal, then pull the export back.
	if found, err := a.DeleteEntry(entry.ID); err != nil || !found {
		t.Fatalf("DeleteEntry() = (%v, %v)", found, err)
	}

	count, err = a.Restore("")
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Restore() count = %d, want 1", count)
	}

	entries := a.ListEntries(core.Filter{})
	if len(entries) != 1 || entries[0].Note != "river crossing" {
		t.Fatalf("ListEntries() after restore = %+v", entries)
	}
	data, err := os.ReadFile(entries[0].URI)
	if err != nil || string(data) != "video bytes" {
		t.Errorf("restored content = (%q, %v)", data, err)
	}
}

func TestApp_Keys(t *testing.T) {
	a := newTestApp(t)

	if a.KeysConfigured() {
		t.Fatal("KeysConfigured() = true before SetupKeys()")
	}
	if err := a.SetupKeys("a-long-passphrase"); err != nil {
		t.Fatalf("SetupKeys() error = %v", err)
	}
	if !a.KeysConfigured() {
		t.Error("KeysConfigured() = false after SetupKeys()")
	}
}

func TestApp_NoVault(t *testing.T) {
	cfg := config.NewConfig("testdev", t.TempDir())
	cfg.Store.Type = "memory"

	a, err := NewApp(cfg, "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer a.Close()

	if _, err := a.Export(); err == nil {
		t.Fatal("Export() expected error without a configured vault")
	}
	if _, err := a.Restore(""); err == nil {
		t.Fatal("Restore() expected error without a configured vault")
	}
}
