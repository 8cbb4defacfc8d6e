package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const createRatesTable = `
	CREATE TABLE IF NOT EXISTS exchange_rates (
		rate_key TEXT PRIMARY KEY,
		rate TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

// SQLite stores rates in a table of an SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens, or creates, the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	if _, err := db.Exec(createRatesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create exchange_rates table in %s: %w", path, err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database path.
func (s *SQLite) Path() string { return s.path }

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Load implements taxwiz.Persister.
func (s *SQLite) Load() (map[string]decimal.Decimal, error) {
	rows, err := s.db.Query(`SELECT rate_key, rate FROM exchange_rates`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange_rates: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]decimal.Decimal)
	for rows.Next() {
		var key, text string
		if err := rows.Scan(&key, &text); err != nil {
			return nil, fmt.Errorf("failed to scan exchange_rates: %w", err)
		}
		rate, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q for %q: %w", text, key, err)
		}
		entries[key] = rate
	}
	return entries, rows.Err()
}

// Persist implements taxwiz.Persister. An existing key keeps its rate.
func (s *SQLite) Persist(key string, rate decimal.Decimal) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO exchange_rates (rate_key, rate) VALUES (?, ?)`, key, rate.String())
	if err != nil {
		return fmt.Errorf("failed to insert rate %q: %w", key, err)
	}
	return nil
}
