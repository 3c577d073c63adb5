package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const prefsFileName = "note_widget_prefs.json"

// PreferenceStore is a persistent string-keyed store.
// Each key is one slot; there are no transactions across keys.
type PreferenceStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// FilePreferences keeps all keys in a single JSON object file.
// Set replaces the file with a rename, so readers in other processes see
// either the previous or the new contents and concurrent writers resolve to
// last-write-wins.
type FilePreferences struct {
	path string
	mu   sync.Mutex
}

// NewFilePreferences creates a store backed by note_widget_prefs.json in dir
func NewFilePreferences(dir string) *FilePreferences {
	return &FilePreferences{path: filepath.Join(dir, prefsFileName)}
}

// Path returns the backing file path
func (p *FilePreferences) Path() string {
	return p.path
}

func (p *FilePreferences) load() (map[string]string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse preferences %s: %w", p.path, err)
	}
	return values, nil
}

// Get returns the value stored under key
func (p *FilePreferences) Get(key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := p.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key, keeping the other keys
func (p *FilePreferences) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := p.load()
	if err != nil {
		// The existing file is unreadable anyway; start over rather than refuse every write
		slog.Warn("discarding unreadable preferences", "path", p.path, "err", err)
		values = map[string]string{}
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return writeFileAtomic(p.path, data, 0o600)
}

// writeFileAtomic writes data to a uniquely named sibling temp file and renames it over path
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"-"+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// MemoryPreferences is an in-process PreferenceStore
type MemoryPreferences struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryPreferences creates an empty in-memory store
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: map[string]string{}}
}

// Get returns the value stored under key
func (m *MemoryPreferences) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryPreferences) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
