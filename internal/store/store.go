package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed cache.Store. The expansion cache keeps its
// whole slot in one kv row, so every Get/Set moves a single value.
type Store struct {
	db *sql.DB
}

// pragma is a connection setting and the value PRAGMA reads back once it
// is applied.
type pragma struct {
	name     string
	value    string
	readback string
}

// Concurrent CLI invocations may share one cache file: WAL lets readers
// proceed during a write and busy_timeout absorbs short lock waits.
var pragmas = []pragma{
	{name: "journal_mode", value: "WAL", readback: "wal"},
	{name: "synchronous", value: "NORMAL", readback: "1"},
	{name: "busy_timeout", value: "5000", readback: "5000"},
}

// migration upgrades the schema from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order inside one transaction each; user_version
// records the last one applied.
var migrations = []migration{
	{
		version: 1,
		name:    "index kv by write order",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_kv_seq ON kv(seq, key)`,
	},
}

// currentSchemaVersion is the version Open leaves the database at.
var currentSchemaVersion = migrations[len(migrations)-1].version

// Open opens the cache database at path, creating it if needed, and
// brings its schema up to date. Opening an up-to-date database changes
// nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache store %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open cache store %s: %w", path, err)
	}

	// One connection serializes writers; SQLite allows only one anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open cache store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func prepare(db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return migrate(db)
}

// migrate applies every migration newer than user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.stmt); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("migration %d (%s): set user_version: %w", m.version, m.name, err)
	}
	return tx.Commit()
}

// pragmaValue reads back a connection setting.
func (s *Store) pragmaValue(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}
