package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"tradeup-scout/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite cache database connection.
type DB struct {
	sql *sql.DB
}

func defaultPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "scout.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "scout.db")
}

// Open opens (or creates) the SQLite cache database and runs migrations.
// An empty path uses the default location next to the working directory.
func Open(path string) (*DB, error) {
	if path == "" {
		path = defaultPath()
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS validation_records (
				item_id     TEXT PRIMARY KEY,
				status      TEXT NOT NULL,
				auth_price  REAL NOT NULL DEFAULT 0,
				discrepancy REAL NOT NULL DEFAULT 0,
				checked_at  TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_validation_status ON validation_records(status);

			CREATE TABLE IF NOT EXISTS sweep_history (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp  TEXT NOT NULL,
				rarities   TEXT NOT NULL,
				count      INTEGER NOT NULL,
				top_profit REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_sweep_history_ts ON sweep_history(timestamp);

			CREATE TABLE IF NOT EXISTS opportunity_results (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				sweep_id       INTEGER NOT NULL REFERENCES sweep_history(id),
				rarity         TEXT,
				split          TEXT,
				cost           REAL,
				expected_value REAL,
				expected_net   REAL,
				profit         REAL,
				roi            REAL,
				guaranteed     INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_opportunity_sweep ON opportunity_results(sweep_id);

			INSERT INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}
