package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store persisted as a single JSON file mapping key to raw JSON
// text. It mirrors the dashboard's localStorage closely enough that a
// settings export can be dropped in as the data file.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenFile opens (or creates) a file-backed store at path.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, values: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("OpenFile: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.values); err != nil {
			return nil, fmt.Errorf("OpenFile: decode %s: %w", path, err)
		}
	}
	return f, nil
}

// Get implements the Store interface.
func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.values[key]
	return v, ok, nil
}

// Set implements the Store interface. Every write flushes to disk via a
// rename so a crash never leaves a half-written data file.
func (f *File) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value

	raw, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("Set: encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".dashbrain-*")
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("Set: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("Set: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("Set: rename into place: %w", err)
	}
	return nil
}

var _ Store = (*File)(nil)
