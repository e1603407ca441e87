package catalog

import (
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

// Store is a read-only view of the item catalog.
type Store interface {
	// Items returns every catalog entry in the given collection and rarity.
	Items(collection string, rarity Rarity) ([]Item, error)
	// Collections returns the names of all collections holding at least one
	// item of the given rarity.
	Collections(rarity Rarity) ([]string, error)
}

// SQLiteStore reads the catalog database produced by the ingestion tooling.
type SQLiteStore struct {
	sql *sql.DB
}

// OpenSQLite opens the catalog database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	return &SQLiteStore{sql: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.sql.Close() }

// Items implements Store. Rows that fail ingestion validation are returned as
// an error, never silently skipped or corrected.
func (s *SQLiteStore) Items(collection string, rarity Rarity) ([]Item, error) {
	rows, err := s.sql.Query(`
		SELECT market_hash_name, collection, rarity, condition_name, price,
		       float_min, float_max, marketable, stattrak, souvenir
		  FROM items
		 WHERE collection = ? AND rarity = ?
		 ORDER BY market_hash_name
	`, collection, string(rarity))
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			id, coll, rar, cond  string
			price, fmin, fmax    float64
			market, sttrak, souv bool
		)
		if err := rows.Scan(&id, &coll, &rar, &cond, &price, &fmin, &fmax, &market, &sttrak, &souv); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it, err := NewItem(id, coll, Rarity(rar), Wear(cond), price, fmin, fmax, market, sttrak, souv)
		if err != nil {
			return nil, fmt.Errorf("catalog row rejected: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Collections implements Store.
func (s *SQLiteStore) Collections(rarity Rarity) ([]string, error) {
	rows, err := s.sql.Query(`
		SELECT DISTINCT collection FROM items WHERE rarity = ? ORDER BY collection
	`, string(rarity))
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// MemStore is an in-memory Store built from a slice of items. It backs tests
// and offline runs against canned catalogs.
type MemStore struct {
	byKey map[memKey][]Item
}

type memKey struct {
	collection string
	rarity     Rarity
}

// NewMemStore indexes the given items by collection and rarity.
func NewMemStore(items []Item) *MemStore {
	m := &MemStore{byKey: make(map[memKey][]Item)}
	for _, it := range items {
		k := memKey{it.Collection, it.Rarity}
		m.byKey[k] = append(m.byKey[k], it)
	}
	return m
}

// Items implements Store.
func (m *MemStore) Items(collection string, rarity Rarity) ([]Item, error) {
	items := m.byKey[memKey{collection, rarity}]
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

// Collections implements Store.
func (m *MemStore) Collections(rarity Rarity) ([]string, error) {
	seen := make(map[string]bool)
	for k := range m.byKey {
		if k.rarity == rarity {
			seen[k.collection] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
