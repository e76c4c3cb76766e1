package app

import (
	"fmt"
	"os"
	"time"

	"bitacora-go/internal/config"
	"bitacora-go/internal/core"
	"bitacora-go/internal/encryption"
	"bitacora-go/internal/fs"
	"bitacora-go/internal/kv"
	"bitacora-go/internal/vault"
)

// App is the application layer between the CLI and the domain services.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw values from flags, and manages the store lifecycle on Close.
type App struct {
	cfg       *config.Config
	store     core.KVStore
	files     core.FileStore
	registry  *core.AccountRegistry
	events    *core.EventStore
	journal   *core.Journal
	vault     core.Vault
	encryptor core.Encryptor
	log       core.Logger
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Login", "AddEntry");
// it tags every log line of the run. The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	files := fs.NewOSFileStore()

	store, err := kv.NewStoreFromConfig(cfg.Store, cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	clock := core.RealClock{}
	idgen := core.MillisIDGenerator{Clock: clock}

	registry := core.NewAccountRegistry(store, log, idgen)
	if err := registry.Initialize(); err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("initializing accounts: %w", err)
	}

	events := core.NewEventStore(store, log, idgen)
	journal := core.NewJournal(files, cfg.Media.Dir, log, clock, idgen)

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	// The vault is only needed for export/restore; a config without vaults
	// is fine for everything else.
	var v core.Vault
	if len(cfg.Vaults) > 0 {
		v, err = vault.NewVaultFromConfig(cfg.Vaults[0])
		if err != nil {
			store.Close()
			logFile.Close()
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	return &App{
		cfg:       cfg,
		store:     store,
		files:     files,
		registry:  registry,
		events:    events,
		journal:   journal,
		vault:     v,
		encryptor: enc,
		log:       log,
		logFile:   logFile,
	}, nil
}

// Register creates a new account.
func (a *App) Register(username, email, password string) (core.Account, error) {
	return a.registry.Register(username, email, password)
}

// Login starts a session for the matching account.
func (a *App) Login(email, password string) (core.Account, error) {
	return a.registry.Login(email, password)
}

// Logout clears the current session.
func (a *App) Logout() error {
	return a.registry.Logout()
}

// CurrentSession returns the logged-in account, or nil.
func (a *App) CurrentSession() *core.Account {
	return a.registry.CurrentSession()
}

// requireSession returns the logged-in account or an error telling the user
// to log in first.
func (a *App) requireSession() (*core.Account, error) {
	acct := a.registry.CurrentSession()
	if acct == nil {
		return nil, fmt.Errorf("not logged in: run 'bita user login' first")
	}
	return acct, nil
}

// ListEvents returns the logged-in user's events in insertion order.
func (a *App) ListEvents() ([]core.Event, error) {
	acct, err := a.requireSession()
	if err != nil {
		return nil, err
	}
	return a.events.List(acct.ID), nil
}

// AddEvent appends a new event to the logged-in user's collection.
func (a *App) AddEvent(draft core.Event) ([]core.Event, error) {
	acct, err := a.requireSession()
	if err != nil {
		return nil, err
	}
	return a.events.Add(acct.ID, draft)
}

// UpdateEvent replaces the fields of the event with the given ID.
// found is false when no event matched (and nothing changed).
func (a *App) UpdateEvent(eventID string, fields core.Event) (found bool, err error) {
	acct, err := a.requireSession()
	if err != nil {
		return false, err
	}
	_, found, err = a.events.Update(acct.ID, eventID, fields)
	return found, err
}

// DeleteEvent removes the event with the given ID.
// found is false when no event matched.
func (a *App) DeleteEvent(eventID string) (found bool, err error) {
	acct, err := a.requireSession()
	if err != nil {
		return false, err
	}
	_, found, err = a.events.Delete(acct.ID, eventID)
	return found, err
}

// AddEntry finalizes a capture: the file at rawPath is moved into the media
// store and a journal entry is appended for it.
func (a *App) AddEntry(rawPath string, typ core.MediaType, note string, loc *core.Location) (core.MediaEntry, error) {
	if _, err := os.Stat(rawPath); err != nil {
		return core.MediaEntry{}, fmt.Errorf("capture file: %w", err)
	}
	return a.journal.FinalizeCapture(rawPath, typ, note, loc)
}

// ListEntries returns journal entries, newest first, narrowed by filter.
func (a *App) ListEntries(filter core.Filter) []core.MediaEntry {
	return a.journal.List(filter)
}

// DeleteEntry removes a journal entry and its backing file.
// found is false when no entry matched.
func (a *App) DeleteEntry(entryID string) (bool, error) {
	return a.journal.Delete(entryID)
}

// SetupKeys generates the export key pair protected by the passphrase.
func (a *App) SetupKeys(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

// KeysConfigured reports whether export encryption keys exist.
func (a *App) KeysConfigured() bool {
	return a.encryptor.IsConfigured()
}

// Export pushes the journal to the configured vault.
func (a *App) Export() (int, error) {
	exp, err := a.exporter()
	if err != nil {
		return 0, err
	}
	return exp.Export()
}

// Restore pulls the newest export from the vault into the local journal.
// passphrase unlocks the private key; pass "" when exports are unencrypted.
func (a *App) Restore(passphrase string) (int, error) {
	exp, err := a.exporter()
	if err != nil {
		return 0, err
	}

	var dec core.DecryptionContext
	if a.encryptor.IsConfigured() {
		dec, err = a.encryptor.Unlock(passphrase)
		if err != nil {
			return 0, fmt.Errorf("unlocking key: %w", err)
		}
	}
	return exp.Restore(dec)
}

func (a *App) exporter() (*core.Exporter, error) {
	if a.vault == nil {
		return nil, fmt.Errorf("no vaults configured")
	}
	return core.NewExporter(a.journal, a.files, a.vault, a.encryptor, a.cfg.DeviceID, a.log), nil
}

// Close releases all resources.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
