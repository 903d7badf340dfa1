// Package db owns the SQLite connection and the authoritative schema for
// the cascade state store.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Path returns the database file location for a repository. The database
// is per-repository so concurrent lifecycles in different clones never
// share a writer. CASCADE_DB_PATH overrides (useful for tests and CI).
func Path(repoRoot string) string {
	if p := os.Getenv("CASCADE_DB_PATH"); p != "" {
		return p
	}
	return filepath.Join(repoRoot, ".cascade", "cascade.db")
}

// Open opens (and initializes, if needed) the state database at path.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	// busy_timeout lets concurrent lifecycle processes wait on each
	// other's writes instead of failing with SQLITE_BUSY.
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := conn.Exec(SchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return conn, nil
}
