package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
)

// Exporter pushes the whole journal — every entry's backing file plus the
// index — to a Vault, and pulls it back on restore. When an Encryptor is
// present and configured, everything stored in the vault is encrypted; the
// local journal format is never touched.
type Exporter struct {
	journal  *Journal
	files    FileStore
	vault    Vault
	enc      Encryptor
	deviceID string
	logger   Logger
}

// NewExporter creates an Exporter for the given journal and vault.
// enc may be nil to disable encryption.
func NewExporter(journal *Journal, files FileStore, vault Vault, enc Encryptor, deviceID string, logger Logger) *Exporter {
	return &Exporter{
		journal:  journal,
		files:    files,
		vault:    vault,
		enc:      enc,
		deviceID: deviceID,
		logger:   logger,
	}
}

// encrypting reports whether exported data should pass through the encryptor.
func (e *Exporter) encrypting() bool {
	return e.enc != nil && e.enc.IsConfigured()
}

// Export uploads every entry's backing file and then the index, versioned one
// above the vault's current index version. Content goes first so a stored
// index never references content the vault does not hold.
func (e *Exporter) Export() (int, error) {
	entries, err := e.journal.Entries()
	if err != nil {
		return 0, err
	}

	current, err := e.vault.IndexVersion(e.deviceID)
	if err != nil {
		return 0, fmt.Errorf("checking vault index version: %w", err)
	}
	version := current + 1

	for _, entry := range entries {
		if err := e.exportContent(entry); err != nil {
			return 0, fmt.Errorf("exporting entry %s: %w", entry.ID, err)
		}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("encoding index: %w", err)
	}
	if err := e.putStream(func(r io.Reader) error {
		return e.vault.PutIndex(e.deviceID, r, version)
	}, bytes.NewReader(data)); err != nil {
		return 0, fmt.Errorf("exporting index: %w", err)
	}

	e.logger.Info("journal exported", "entries", len(entries), "version", version, "encrypted", e.encrypting())
	return len(entries), nil
}

func (e *Exporter) exportContent(entry MediaEntry) error {
	f, err := e.files.Open(entry.URI)
	if err != nil {
		return fmt.Errorf("opening backing file: %w", err)
	}
	defer f.Close()

	return e.putStream(func(r io.Reader) error {
		return e.vault.PutContent(entry.ID, r)
	}, f)
}

// putStream feeds src to put, inserting the encryptor in between when
// configured. Encryption streams through a pipe so video-sized files are
// never buffered whole.
func (e *Exporter) putStream(put func(io.Reader) error, src io.Reader) error {
	if !e.encrypting() {
		return put(src)
	}

	pr, pw := io.Pipe()
	encErrCh := make(chan error, 1)
	go func() {
		err := e.enc.Encrypt(src, pw)
		pw.CloseWithError(err)
		encErrCh <- err
	}()

	putErr := put(pr)
	pr.CloseWithError(putErr) // unblock encryptor if put failed early
	encErr := <-encErrCh      // wait for goroutine to finish (no leak)

	if putErr != nil {
		return putErr
	}
	return encErr
}

// Restore pulls the newest export back into the local journal. Backing files
// are written before the index is replaced, preserving the file-before-index
// ordering the journal guarantees. Entry URIs are rebased onto the local
// media directory, since the export may come from another machine.
// dec must be non-nil when the export was encrypted.
func (e *Exporter) Restore(dec DecryptionContext) (int, error) {
	version, err := e.vault.IndexVersion(e.deviceID)
	if err != nil {
		return 0, fmt.Errorf("checking vault index version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("vault holds no export for device %s", e.deviceID)
	}

	var raw bytes.Buffer
	if err := e.getStream(func(w io.Writer) error {
		return e.vault.GetIndex(e.deviceID, w)
	}, &raw, dec); err != nil {
		return 0, fmt.Errorf("fetching index: %w", err)
	}

	var entries []MediaEntry
	if err := json.Unmarshal(raw.Bytes(), &entries); err != nil {
		return 0, fmt.Errorf("decoding index: %w", err)
	}

	if err := e.journal.EnsureStoreReady(); err != nil {
		return 0, err
	}

	for i := range entries {
		dst := filepath.Join(e.journal.Dir(), filepath.Base(entries[i].URI))
		if err := e.restoreContent(entries[i].ID, dst, dec); err != nil {
			return 0, fmt.Errorf("restoring entry %s: %w", entries[i].ID, err)
		}
		entries[i].URI = dst
	}

	if err := e.journal.ReplaceIndex(entries); err != nil {
		return 0, err
	}

	e.logger.Info("journal restored", "entries", len(entries), "version", version)
	return len(entries), nil
}

func (e *Exporter) restoreContent(id, dst string, dec DecryptionContext) error {
	f, err := e.files.Create(dst)
	if err != nil {
		return fmt.Errorf("creating backing file: %w", err)
	}

	if err := e.getStream(func(w io.Writer) error {
		return e.vault.GetContent(id, w)
	}, f, dec); err != nil {
		f.Close()
		// Don't leave a partial file behind in the media dir.
		if rmErr := e.files.Delete(dst); rmErr != nil {
			e.logger.Warn("removing partial restore file", "uri", dst, "error", rmErr)
		}
		return err
	}
	return f.Close()
}

// getStream runs get, routing its output through dec when one is supplied.
func (e *Exporter) getStream(get func(io.Writer) error, dst io.Writer, dec DecryptionContext) error {
	if dec == nil {
		return get(dst)
	}

	pr, pw := io.Pipe()
	getErrCh := make(chan error, 1)
	go func() {
		err := get(pw)
		pw.CloseWithError(err)
		getErrCh <- err
	}()

	decErr := dec.Decrypt(pr, dst)
	pr.CloseWithError(decErr) // unblock the fetch if Decrypt failed early
	getErr := <-getErrCh      // wait for goroutine to finish (no leak)

	if decErr != nil {
		return decErr
	}
	return getErr
}
