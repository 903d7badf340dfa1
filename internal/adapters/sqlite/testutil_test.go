// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the single point where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests always run against
// the authoritative schema - do not hardcode CREATE TABLE statements in
// test files.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/cascade/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedWorktree inserts a test worktree and returns its ID.
func seedWorktree(t *testing.T, db *sql.DB, id, branch string) string {
	t.Helper()
	if id == "" {
		id = "wt-000000000001"
	}
	if branch == "" {
		branch = "feature/test"
	}
	_, err := db.Exec(
		"INSERT INTO worktrees (id, kind, slug, path, branch, base_branch, status) VALUES (?, 'feature', 'test', ?, ?, 'contrib/main', 'active')",
		id, "/tmp/repo_feature_"+id, branch,
	)
	if err != nil {
		t.Fatalf("failed to seed worktree: %v", err)
	}
	return id
}
