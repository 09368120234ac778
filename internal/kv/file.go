package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// File keeps every key in a single JSON document on local disk. It is the
// terminal client's equivalent of browser local storage.
type File struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFile returns a store backed by path. The file and its directory are
// created on first write.
func NewFile(path string) *File {
	return &File{path: path, now: time.Now}
}

// DefaultPath returns the per-user location used when no path is configured.
func DefaultPath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}

	return filepath.Join(dir, app, "storage.json"), nil
}

func (f *File) Get(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return false, err
	}

	e, ok := entries[key]
	if !ok {
		return false, nil
	}

	if e.ExpiresAt != nil && !f.now().Before(*e.ExpiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(e.Value, dest); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}

	return true, nil
}

func (f *File) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}

	e := fileEntry{Value: data}
	if ttl > 0 {
		exp := f.now().Add(ttl)
		e.ExpiresAt = &exp
	}

	entries[key] = e

	return f.save(entries)
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := entries[key]; !ok {
		return nil
	}

	delete(entries, key)

	return f.save(entries)
}

func (f *File) load() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}

		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	if len(data) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}

	return entries, nil
}

// save writes to a temp file and renames it over the old one so a crash
// never leaves a half-written document behind.
func (f *File) save(entries map[string]fileEntry) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing storage: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing storage: %w", err)
	}

	return nil
}
