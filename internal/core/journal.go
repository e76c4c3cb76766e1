package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

// indexFile is the JSON array of MediaEntry persisted next to the media files.
const indexFile = "entries.json"

// FilterKind selects which entry types List returns.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterPhotos
	FilterVideos
)

// Filter narrows a journal listing. A type filter and a text query are
// mutually exclusive: when Kind is FilterPhotos or FilterVideos the Query is
// ignored, matching the original screen's filter chain. Do not combine them.
type Filter struct {
	Kind  FilterKind
	Query string
}

// Journal is the media entry catalog: one JSON index plus one backing file
// per entry, all inside a single media directory. A journal-wide mutex keeps
// index rewrites single-writer.
type Journal struct {
	files  FileStore
	dir    string
	logger Logger
	clock  Clock
	idgen  IDGenerator
	mu     sync.Mutex
}

// NewJournal creates a Journal rooted at dir.
func NewJournal(files FileStore, dir string, logger Logger, clock Clock, idgen IDGenerator) *Journal {
	return &Journal{files: files, dir: dir, logger: logger, clock: clock, idgen: idgen}
}

// Dir returns the media directory the journal is rooted at.
func (j *Journal) Dir() string { return j.dir }

// EnsureStoreReady creates the media directory if it does not exist.
func (j *Journal) EnsureStoreReady() error {
	if err := j.files.EnsureDir(j.dir); err != nil {
		return fmt.Errorf("creating media directory: %w", err)
	}
	return nil
}

// FinalizeCapture moves a temporary captured file into the permanent store
// and appends the new entry to the index. The move happens before the index
// write: the file must exist at its permanent path before the index
// references it. A crash in between leaves an orphan file, which is harmless
// and cleanable; the reverse would break playback.
func (j *Journal) FinalizeCapture(tempURI string, typ MediaType, note string, loc *Location) (MediaEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.EnsureStoreReady(); err != nil {
		return MediaEntry{}, err
	}

	id := j.idgen.New()
	dst := filepath.Join(j.dir, id+"."+typ.Ext())

	if err := j.files.Move(tempURI, dst); err != nil {
		return MediaEntry{}, fmt.Errorf("moving capture into store: %w", err)
	}

	entry := MediaEntry{
		ID:       id,
		URI:      dst,
		Type:     typ,
		Note:     note,
		Location: loc,
		Date:     ISOTime(j.clock.Now()),
	}

	entries, err := j.readIndex()
	if err != nil {
		return MediaEntry{}, err
	}
	entries = append(entries, entry)

	if err := j.writeIndex(entries); err != nil {
		return MediaEntry{}, err
	}

	j.logger.Info("capture saved", "entry", id, "type", string(typ))
	return entry, nil
}

// List returns entries most-recently-created first, optionally narrowed by
// filter. Read failures degrade to an empty listing with a logged warning.
func (j *Journal) List(filter Filter) []MediaEntry {
	entries, err := j.readIndex()
	if err != nil {
		j.logger.Warn("loading journal index", "error", err)
		return nil
	}

	// Stored order is oldest-first; present newest-first.
	out := make([]MediaEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if matches(entries[i], filter) {
			out = append(out, entries[i])
		}
	}
	return out
}

func matches(e MediaEntry, f Filter) bool {
	switch f.Kind {
	case FilterPhotos:
		return e.Type == MediaPhoto
	case FilterVideos:
		return e.Type == MediaVideo
	}
	if f.Query != "" {
		return strings.Contains(strings.ToLower(e.Note), strings.ToLower(f.Query))
	}
	return true
}

// Delete removes the entry's backing file and then rewrites the index
// without it. A missing entry ID is a no-op (found reports it). A missing
// backing file is logged and skipped: index consistency wins over
// file-removal success.
func (j *Journal) Delete(entryID string) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.readIndex()
	if err != nil {
		return false, err
	}

	idx := -1
	for i, e := range entries {
		if e.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	if err := j.files.Delete(entries[idx].URI); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			j.logger.Warn("backing file already missing", "entry", entryID, "uri", entries[idx].URI)
		} else {
			return false, fmt.Errorf("removing backing file: %w", err)
		}
	}

	entries = append(entries[:idx], entries[idx+1:]...)
	if err := j.writeIndex(entries); err != nil {
		return false, err
	}

	j.logger.Info("entry deleted", "entry", entryID)
	return true, nil
}

// Entries returns the raw index in stored order. Used by export.
func (j *Journal) Entries() ([]MediaEntry, error) {
	return j.readIndex()
}

// ReplaceIndex overwrites the whole index. Used by restore, after the
// backing files have been written.
func (j *Journal) ReplaceIndex(entries []MediaEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.writeIndex(entries)
}

func (j *Journal) indexPath() string {
	return filepath.Join(j.dir, indexFile)
}

func (j *Journal) readIndex() ([]MediaEntry, error) {
	data, err := j.files.ReadText(j.indexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading journal index: %w", err)
	}

	var entries []MediaEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, fmt.Errorf("decoding journal index: %w", err)
	}
	return entries, nil
}

func (j *Journal) writeIndex(entries []MediaEntry) error {
	if entries == nil {
		entries = []MediaEntry{} // store "[]", never "null"
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding journal index: %w", err)
	}
	if err := j.files.WriteText(j.indexPath(), string(data)); err != nil {
		return fmt.Errorf("persisting journal index: %w", err)
	}
	return nil
}
