package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// document is the on-disk shape: one TOML file holding both records.
type document struct {
	Settings Settings `toml:"settings"`
	Stats    Stats    `toml:"stats"`
}

// FileStore persists settings and stats in a single TOML file. Writes are
// atomic (temp file then rename) and whole-document, so concurrent writers
// get last-writer-wins rather than a torn file. Reads always hit the disk.
type FileStore struct {
	path string

	mu sync.Mutex
}

// NewFileStore returns a store backed by the TOML file at path. The file
// does not need to exist yet; reads of a missing file return defaults.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path, for watcher wiring.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) load() (document, error) {
	doc := document{Settings: Default()}

	meta, err := toml.DecodeFile(f.path, &doc)
	if errors.Is(err, fs.ErrNotExist) {
		return document{Settings: Default()}, nil
	}

	if err != nil {
		return document{}, fmt.Errorf("settings: decoding %s: %w", f.path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return document{}, fmt.Errorf("settings: unknown keys in %s: %v", f.path, undecoded)
	}

	return doc, nil
}

// save writes the whole document atomically: encode to a temp file in the
// same directory, fsync, then rename over the target.
func (f *FileStore) save(doc document) error {
	dir := filepath.Dir(f.path)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("settings: creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("settings: creating temp file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := toml.NewEncoder(tmp).Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("settings: encoding document: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("settings: syncing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("settings: closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("settings: replacing %s: %w", f.path, err)
	}

	return nil
}

// Settings reads the current settings record from disk.
func (f *FileStore) Settings(ctx context.Context) (Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return Settings{}, err
	}

	return doc.Settings, nil
}

// SaveSettings replaces the settings record, preserving stats.
func (f *FileStore) SaveSettings(ctx context.Context, s Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	doc.Settings = s

	return f.save(doc)
}

// Stats reads the current statistics record from disk.
func (f *FileStore) Stats(ctx context.Context) (Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return Stats{}, err
	}

	return doc.Stats, nil
}

// SaveStats replaces the statistics record, preserving settings.
func (f *FileStore) SaveStats(ctx context.Context, st Stats) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	doc.Stats = st

	return f.save(doc)
}

// Compile-time interface check.
var _ Repository = (*FileStore)(nil)
