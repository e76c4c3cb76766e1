package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bitacora-go/internal/core"
)

// FileSystemVault is a filesystem-based implementation of the Vault
// interface, for exports to an external disk or a synced folder:
//
//	<root>/
//	  content/
//	    <entryID>            (one object per journal entry)
//	  index/
//	    <deviceID>.json      (journal index per device)
//	    <deviceID>.version   (export version marker)
type FileSystemVault struct {
	name       string
	root       string
	contentDir string
	indexDir   string
}

var _ core.Vault = (*FileSystemVault)(nil)

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	contentDir := filepath.Join(root, "content")
	indexDir := filepath.Join(root, "index")

	if err := os.MkdirAll(contentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	if err := os.MkdirAll(indexDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	return &FileSystemVault{
		name:       name,
		root:       root,
		contentDir: contentDir,
		indexDir:   indexDir,
	}, nil
}

// PutContent stores an entry's backing file. Overwrites any previous copy.
func (v *FileSystemVault) PutContent(id string, r io.Reader) error {
	return v.writeFile(filepath.Join(v.contentDir, id), r)
}

// GetContent retrieves an entry's backing file and writes it to w.
func (v *FileSystemVault) GetContent(id string, w io.Writer) error {
	srcPath := filepath.Join(v.contentDir, id)
	return v.readFile(srcPath, w, fmt.Sprintf("content not found: %s", id))
}

// PutIndex stores the index for a device along with its version marker.
func (v *FileSystemVault) PutIndex(deviceID string, r io.Reader, version int64) error {
	if err := v.writeFile(filepath.Join(v.indexDir, deviceID+".json"), r); err != nil {
		return err
	}

	versionPath := filepath.Join(v.indexDir, deviceID+".version")
	return os.WriteFile(versionPath, []byte(strconv.FormatInt(version, 10)), 0644)
}

// GetIndex retrieves the index for a device and writes it to w.
func (v *FileSystemVault) GetIndex(deviceID string, w io.Writer) error {
	srcPath := filepath.Join(v.indexDir, deviceID+".json")
	return v.readFile(srcPath, w, fmt.Sprintf("index not found for device: %s", deviceID))
}

// IndexVersion returns the stored export version for a device.
// Returns 0 if no version file exists.
func (v *FileSystemVault) IndexVersion(deviceID string) (int64, error) {
	versionPath := filepath.Join(v.indexDir, deviceID+".version")
	data, err := os.ReadFile(versionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}

	for _, dir := range []string{v.contentDir, v.indexDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}

	return nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// readFile reads from the specified path and writes to w.
func (v *FileSystemVault) readFile(srcPath string, w io.Writer, notFoundMsg string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s", notFoundMsg)
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	return nil
}
