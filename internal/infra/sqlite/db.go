// Package sqlite persists ledger state: account snapshots per profile, the
// reward journal and the shop wallet.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the storage directory.
const FileName = "starfront.db"

// DB wraps the SQLite connection.
type DB struct {
	db *sql.DB
}

// Open creates dir if needed, opens the database inside it and applies
// migrations.
func Open(dir string) (*DB, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer; the reward loop serializes all mutations anyway.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := &DB{db: sqlDB}
	if err := db.initPragmas(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// Close releases the connection.
func (db *DB) Close() error {
	if db == nil || db.db == nil {
		return nil
	}
	return db.db.Close()
}

func (db *DB) initPragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Latest account snapshot per player profile
		`CREATE TABLE IF NOT EXISTS ledger_accounts (
			profile          TEXT PRIMARY KEY,
			credits          INTEGER NOT NULL DEFAULT 0,
			uridium          INTEGER NOT NULL DEFAULT 0,
			honor            INTEGER NOT NULL DEFAULT 0,
			experience       INTEGER NOT NULL DEFAULT 0,
			level_experience INTEGER NOT NULL DEFAULT 0,
			updated_at       TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Applied reward events, one row per event id
		`CREATE TABLE IF NOT EXISTS reward_journal (
			event_id   TEXT PRIMARY KEY,
			category   TEXT NOT NULL,
			credits    INTEGER NOT NULL DEFAULT 0,
			uridium    INTEGER NOT NULL DEFAULT 0,
			honor      INTEGER NOT NULL DEFAULT 0,
			experience INTEGER NOT NULL DEFAULT 0,
			level      INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reward_journal_created ON reward_journal(created_at)`,

		// Upgrade shop mirror of credits and uridium
		`CREATE TABLE IF NOT EXISTS shop_wallet (
			profile    TEXT PRIMARY KEY,
			credits    INTEGER NOT NULL DEFAULT 0,
			uridium    INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}
}
