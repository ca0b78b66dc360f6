// internal/settings/settings.go
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store persists small named integers across restarts. Values live in one
// YAML file rewritten whole on every save; writes go through a temp file
// and rename so a crash never leaves a half-written store behind.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]int64
}

// Open reads the store at path. A missing file yields an empty store;
// any other read or parse failure is an error.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("settings: path must not be empty")
	}

	s := &Store{
		path:   path,
		values: make(map[string]int64),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]int64)
	}

	return s, nil
}

// LoadInt returns the stored value for key, or ok=false if absent.
func (s *Store) LoadInt(key string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	return v, ok
}

// SaveInt stores key=value and rewrites the backing file.
func (s *Store) SaveInt(key string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.flush()
}

// flush rewrites the whole store. Caller holds s.mu.
func (s *Store) flush() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("settings: temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: rename %s: %w", s.path, err)
	}

	return nil
}
