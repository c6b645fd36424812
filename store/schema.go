package store

// Schema version for migration management
const SchemaVersion = 1

// SQL statements for database schema creation

// ChildrenTableSQL creates the local child profiles table.
// Profile fields beyond the name are device-local and are never
// touched by a pull.
const ChildrenTableSQL = `
CREATE TABLE IF NOT EXISTS children (
    local_child_id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    avatar TEXT,
    coins INTEGER DEFAULT 0,
    selected_pack_id TEXT,
    created_at INTEGER,
    modified_at INTEGER
);
`

// IdentityMapTableSQL creates the local-to-remote child id mapping table.
// At most one remote id per local id (primary key on local_child_id).
const IdentityMapTableSQL = `
CREATE TABLE IF NOT EXISTS child_id_map (
    local_child_id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    remote_child_id TEXT NOT NULL,
    bound_at INTEGER NOT NULL
);
`

// TombstonesTableSQL creates the deletion-intent table. A row here means
// the child was deleted locally and must never be revived by a pull.
const TombstonesTableSQL = `
CREATE TABLE IF NOT EXISTS tombstones (
    owner_id TEXT NOT NULL,
    local_child_id TEXT NOT NULL,
    deleted_at INTEGER NOT NULL,

    PRIMARY KEY(owner_id, local_child_id)
);
`

// ProgressOutboxTableSQL creates the progress outbox. Rows are upserted
// remotely keyed by id; the synced flag flips 0 -> 1 exactly once.
const ProgressOutboxTableSQL = `
CREATE TABLE IF NOT EXISTS progress_outbox (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    local_child_id TEXT NOT NULL,
    pack_id TEXT NOT NULL,
    track_id TEXT NOT NULL,
    lesson_id TEXT NOT NULL,
    status TEXT NOT NULL,
    score INTEGER DEFAULT 0,
    attempts INTEGER DEFAULT 0,
    duration_sec INTEGER DEFAULT 0,
    updated_at INTEGER NOT NULL,
    synced INTEGER DEFAULT 0
);
`

// EventOutboxTableSQL creates the telemetry event outbox. Rows are
// insert-only remotely.
const EventOutboxTableSQL = `
CREATE TABLE IF NOT EXISTS event_outbox (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    local_child_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    payload TEXT,
    created_at INTEGER NOT NULL,
    synced INTEGER DEFAULT 0
);
`

// SchemaVersionTableSQL creates the schema version table for migration tracking
const SchemaVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// Index creation statements for common queries

const ChildrenIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_children_owner_id ON children(owner_id);
`

const IdentityMapIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_child_id_map_owner_id ON child_id_map(owner_id);
CREATE INDEX IF NOT EXISTS idx_child_id_map_remote ON child_id_map(remote_child_id);
`

const OutboxIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_progress_outbox_synced ON progress_outbox(owner_id, synced);
CREATE INDEX IF NOT EXISTS idx_progress_outbox_child ON progress_outbox(local_child_id);
CREATE INDEX IF NOT EXISTS idx_event_outbox_synced ON event_outbox(owner_id, synced);
CREATE INDEX IF NOT EXISTS idx_event_outbox_child ON event_outbox(local_child_id);
`

// AllTableSchemas returns all table creation statements in order
func AllTableSchemas() []string {
	return []string{
		SchemaVersionTableSQL,
		ChildrenTableSQL,
		IdentityMapTableSQL,
		TombstonesTableSQL,
		ProgressOutboxTableSQL,
		EventOutboxTableSQL,
	}
}

// AllIndexes returns all index creation statements
func AllIndexes() []string {
	return []string{
		ChildrenIndexesSQL,
		IdentityMapIndexesSQL,
		OutboxIndexesSQL,
	}
}

// PragmaStatements returns pragma statements to execute on database connection
func PragmaStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous = NORMAL", // Balance between safety and performance
	}
}
