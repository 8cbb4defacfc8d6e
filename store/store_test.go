package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/taxwiz"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// persister is implemented by both stores.
type persister interface {
	taxwiz.Persister
	Path() string
}

func stores(t *testing.T) map[string]func(path string) persister {
	return map[string]func(path string) persister{
		"json": func(path string) persister { return NewJSONFile(path + ".json") },
		"sqlite": func(path string) persister {
			s, err := OpenSQLite(path + ".db")
			if err != nil {
				t.Fatalf("OpenSQLite() unexpected error = %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", "cache")
			if name == "sqlite" {
				path = filepath.Join(t.TempDir(), "cache")
			}

			s := open(path)
			entries, err := s.Load()
			if err != nil {
				t.Fatalf("Load() on a new store unexpected error = %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("Load() on a new store = %v, want empty", entries)
			}

			if err := s.Persist("2024-01-05|USD", decimal.RequireFromString("352.12")); err != nil {
				t.Fatalf("Persist() unexpected error = %v", err)
			}
			if err := s.Persist("2024-01-05|EUR", decimal.RequireFromString("385.1")); err != nil {
				t.Fatalf("Persist() unexpected error = %v", err)
			}

			entries, err = open(path).Load()
			if err != nil {
				t.Fatalf("Load() unexpected error = %v", err)
			}
			if got := entries["2024-01-05|USD"]; !got.Equal(decimal.RequireFromString("352.12")) {
				t.Errorf("Load()[USD] = %v, want 352.12", got)
			}
			if len(entries) != 2 {
				t.Errorf("Load() returned %d entries, want 2", len(entries))
			}
		})
	}
}

func TestJSONFile_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	// strings are accepted too
	if err := os.WriteFile(path, []byte(`{"2024-01-04|USD": 350.5, "2024-01-03|USD": "349"}`), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewJSONFile(path)
	entries, err := s.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Load() = %v, want 2 entries", entries)
	}
	if err := s.Persist("2024-01-05|USD", decimal.RequireFromString("352.12")); err != nil {
		t.Fatalf("Persist() unexpected error = %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"2024-01-05|USD": 352.12`, `"2024-01-04|USD": 350.5`, `"2024-01-03|USD": 349`} {
		if !strings.Contains(string(content), want) {
			t.Errorf("cache file %s does not contain %s", content, want)
		}
	}
}

func TestJSONFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"2024-01-04|USD": `), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONFile(path).Load(); err == nil || !strings.Contains(err.Error(), "could not decode rate cache") {
		t.Errorf("Load() error = %v, want a decode error", err)
	}

	// the cache reports it and starts empty
	c := taxwiz.NewRateCache(NewJSONFile(path), zerolog.Nop())
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestStore_PrimesRateCache(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cache")
			key := taxwiz.NewRateKey(taxwiz.NewDate(2024, 1, 5), "USD")

			c := taxwiz.NewRateCache(open(path), zerolog.Nop())
			if err := c.Put(key, decimal.RequireFromString("352.12")); err != nil {
				t.Fatalf("Put() unexpected error = %v", err)
			}

			c = taxwiz.NewRateCache(open(path), zerolog.Nop())
			got, ok := c.Get(key)
			if !ok || !got.Equal(decimal.RequireFromString("352.12")) {
				t.Errorf("Get() = %v, %v, want 352.12, true", got, ok)
			}
		})
	}
}

func TestSQLite_KeepsFirstRate(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() unexpected error = %v", err)
	}
	defer s.Close()

	s.Persist("2024-01-05|USD", decimal.RequireFromString("352.12"))
	s.Persist("2024-01-05|USD", decimal.RequireFromString("1"))
	entries, err := s.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}
	if got := entries["2024-01-05|USD"]; !got.Equal(decimal.RequireFromString("352.12")) {
		t.Errorf("Load()[USD] = %v, want 352.12", got)
	}
}
