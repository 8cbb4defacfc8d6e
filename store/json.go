// Package store persists resolved exchange rates between runs.
//
// Both stores implement taxwiz.Persister, keyed by "YYYY-MM-DD|CCY".
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
)

// JSONFile stores rates in a single JSON object, {"2024-01-05|USD": 352.12, ...},
// rewritten after every new rate.
type JSONFile struct {
	path string

	mu      sync.Mutex
	entries map[string]decimal.Decimal
}

// NewJSONFile returns a store backed by the file at path. The file is created
// on the first Persist.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path, entries: make(map[string]decimal.Decimal)}
}

// Path returns the file path.
func (s *JSONFile) Path() string { return s.path }

// Load implements taxwiz.Persister. A missing file is an empty store.
func (s *JSONFile) Load() (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]decimal.Decimal{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read rate cache %q: %w", s.path, err)
	}
	// decimal.Decimal reads both numbers and strings.
	entries := make(map[string]decimal.Decimal)
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("could not decode rate cache %q: %w", s.path, err)
	}
	s.entries = entries
	return maps.Clone(entries), nil
}

// Persist implements taxwiz.Persister.
func (s *JSONFile) Persist(key string, rate decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = rate
	// numbers, not the quoted strings decimal.Decimal marshals to.
	out := make(map[string]json.Number, len(s.entries))
	for k, v := range s.entries {
		out[k] = json.Number(v.String())
	}
	content, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode rate cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("could not create directory for rate cache %q: %w", s.path, err)
	}
	// write aside then rename, so that an interrupted run never leaves a truncated file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return fmt.Errorf("could not write rate cache %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("could not write rate cache %q: %w", s.path, err)
	}
	return nil
}
