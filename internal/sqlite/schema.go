// Package sqlite implements the local contact snapshot store on SQLite.
package sqlite

// Schema DDL. Statements are idempotent so an existing database is reused.
const (
	createSnapshots = `CREATE TABLE IF NOT EXISTS snapshots (
    snapshot_id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    contact_count INTEGER NOT NULL,
    created_at TEXT NOT NULL
);`

	createSnapshotContacts = `CREATE TABLE IF NOT EXISTS snapshot_contacts (
    snapshot_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    vid INTEGER NOT NULL,
    email TEXT,
    body TEXT NOT NULL,
    PRIMARY KEY (snapshot_id, position),
    FOREIGN KEY (snapshot_id) REFERENCES snapshots(snapshot_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxSnapshotsLabel       = `CREATE INDEX IF NOT EXISTS idx_snapshots_label ON snapshots(label);`
	idxSnapshotContactsVID  = `CREATE INDEX IF NOT EXISTS idx_snapshot_contacts_vid ON snapshot_contacts(vid);`
	idxSnapshotContactsMail = `CREATE INDEX IF NOT EXISTS idx_snapshot_contacts_email ON snapshot_contacts(email);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createSnapshots,
	createSnapshotContacts,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxSnapshotsLabel,
	idxSnapshotContactsVID,
	idxSnapshotContactsMail,
}
