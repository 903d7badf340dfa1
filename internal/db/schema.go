package db

// SchemaSQL is the complete schema for fresh cascade installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All repository
// tests load it via GetSchemaSQL() so test schemas can never drift from
// production - a repository referencing a missing column fails immediately
// with "no such column" at development time.
const SchemaSQL = `
-- Worktrees (isolated checkouts, one per branch, at most one active per branch)
CREATE TABLE IF NOT EXISTS worktrees (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL CHECK(kind IN ('feature', 'contrib', 'release')),
	slug TEXT NOT NULL,
	path TEXT NOT NULL,
	branch TEXT NOT NULL,
	base_branch TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('active', 'removed')) DEFAULT 'active',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	removed_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_worktrees_active_branch
	ON worktrees(branch) WHERE status = 'active';

CREATE UNIQUE INDEX IF NOT EXISTS idx_worktrees_active_path
	ON worktrees(path) WHERE status = 'active';

-- Sync records (append-only audit trail of phase transitions)
CREATE TABLE IF NOT EXISTS sync_records (
	sync_id TEXT PRIMARY KEY,
	worktree_id TEXT,
	sync_type TEXT NOT NULL CHECK(sync_type IN ('phase', 'promotion', 'release', 'backmerge')),
	phase_pattern TEXT NOT NULL CHECK(phase_pattern IN (
		'phase_1_specify', 'phase_2_plan', 'phase_3_tasks', 'phase_4_implement',
		'phase_5_integrate', 'phase_6_release', 'phase_7_backmerge')),
	source_location TEXT NOT NULL,
	target_location TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'in_progress', 'completed', 'failed')) DEFAULT 'pending',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_sync_records_worktree ON sync_records(worktree_id);
CREATE INDEX IF NOT EXISTS idx_sync_records_status ON sync_records(status);

-- Pull requests (local review units for promotion edges)
CREATE TABLE IF NOT EXISTS pull_requests (
	id TEXT PRIMARY KEY,
	edge TEXT NOT NULL,
	source_branch TEXT NOT NULL,
	target_branch TEXT NOT NULL,
	worktree_id TEXT,
	status TEXT NOT NULL CHECK(status IN ('draft', 'open', 'merged', 'closed')) DEFAULT 'open',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	merged_at DATETIME,
	closed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_pull_requests_source ON pull_requests(source_branch);

-- Release tags (one row per version ever tagged; versions are never reused)
CREATE TABLE IF NOT EXISTS release_tags (
	version TEXT PRIMARY KEY,
	tag TEXT NOT NULL UNIQUE,
	released_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the authoritative schema for test setup.
func GetSchemaSQL() string {
	return SchemaSQL
}
