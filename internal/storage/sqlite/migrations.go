package sqlite

import "database/sql"

// schema sets up the database. It runs on every startup; statements must
// stay idempotent. Timestamps are Unix milliseconds, NULL when unknown.
const schema = `
CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'other',
    currency TEXT NOT NULL DEFAULT '',
    members_count INTEGER NOT NULL DEFAULT 0,
    members_target INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    uid TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (group_id, position),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS import_files (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    text TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    currency TEXT NOT NULL,
    imported_at INTEGER,
    created_by TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    amount REAL NOT NULL,
    category TEXT NOT NULL,
    currency TEXT NOT NULL DEFAULT '',
    group_id TEXT,
    paid_by_uid TEXT NOT NULL DEFAULT '',
    paid_by_name TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL DEFAULT '',
    split_type TEXT NOT NULL DEFAULT 'equal',
    note TEXT NOT NULL DEFAULT '',
    import_file_id TEXT,
    created_at INTEGER,
    updated_at INTEGER,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE SET NULL,
    FOREIGN KEY (import_file_id) REFERENCES import_files(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS preferences (
    user_id TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_group_members_group_id ON group_members(group_id);
CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses(group_id);
CREATE INDEX IF NOT EXISTS idx_expenses_created_by ON expenses(created_by);
CREATE INDEX IF NOT EXISTS idx_expenses_import_file_id ON expenses(import_file_id);
CREATE INDEX IF NOT EXISTS idx_import_files_created_by ON import_files(created_by);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
