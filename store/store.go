// Package store persists heap snapshots in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/lispbc/value"
	"github.com/chazu/lispbc/vm"
)

var log = commonlog.GetLogger("lispbc.store")

// ErrNotFound indicates the requested symbol is not in the store.
var ErrNotFound = errors.New("symbol not found")

// Store is a SQLite file holding one heap snapshot. Records are stored as
// canonical CBOR blobs keyed by symbol.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS heap (
		symbol TEXT PRIMARY KEY,
		record BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveHeap replaces the stored snapshot with the contents of h.
func (s *Store) SaveHeap(h *vm.MapHeap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM heap"); err != nil {
		return fmt.Errorf("clearing heap: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO heap (symbol, record) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, sym := range h.Symbols() {
		r, _ := h.Get(sym)
		data, err := value.MarshalRecord(r)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", sym, err)
		}
		if _, err := stmt.Exec(sym, data); err != nil {
			return fmt.Errorf("saving %s: %w", sym, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing heap: %w", err)
	}
	log.Infof("saved %d symbols to %s", h.Len(), s.path)
	return nil
}

// LoadHeap inserts every stored record into h, in symbol order. Records
// already in h are merged by h's own insert policy.
func (s *Store) LoadHeap(h vm.Heap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT symbol, record FROM heap ORDER BY symbol")
	if err != nil {
		return fmt.Errorf("querying heap: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var sym string
		var data []byte
		if err := rows.Scan(&sym, &data); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
		r, err := value.UnmarshalRecord(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", sym, err)
		}
		h.Insert(sym, r)
		n++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading heap: %w", err)
	}
	log.Infof("loaded %d symbols from %s", n, s.path)
	return nil
}

// Get returns the stored record for sym.
func (s *Store) Get(sym string) (value.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow("SELECT record FROM heap WHERE symbol = ?", sym).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return value.Record{}, fmt.Errorf("%w: %s", ErrNotFound, sym)
		}
		return value.Record{}, fmt.Errorf("querying %s: %w", sym, err)
	}
	return value.UnmarshalRecord(data)
}

// Symbols returns the stored symbols in order.
func (s *Store) Symbols() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT symbol FROM heap ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("querying symbols: %w", err)
	}
	defer rows.Close()

	var syms []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		syms = append(syms, sym)
	}
	return syms, rows.Err()
}
