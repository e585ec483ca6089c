package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// DBFileName is the database file inside the data directory.
const DBFileName = "hubcontacts.db"

// Store keeps labelled snapshots of contact lists. Snapshots are written
// once and never updated; the remote API stays the source of truth.
type Store struct {
	mu      sync.RWMutex
	db      *sql.DB
	dataDir string
	now     func() time.Time
}

// Open creates dataDir if needed, opens the snapshot database in it and
// applies the schema.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dsn := filepath.Join(dataDir, DBFileName) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &Store{db: db, dataDir: dataDir, now: time.Now}, nil
}

// DataDir returns the directory holding the database.
func (s *Store) DataDir() string {
	return s.dataDir
}

// Close releases the database. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SaveSnapshot stores contacts, in order, under a new snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, label string, contacts []*types.Contact) (types.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.Snapshot{}, types.ErrStoreClosed
	}

	snap := types.Snapshot{
		ID:        generateUUID(),
		Label:     label,
		Count:     len(contacts),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (snapshot_id, label, contact_count, created_at) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Label, snap.Count, snap.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return types.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_contacts (snapshot_id, position, vid, email, body) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("prepare contact insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range contacts {
		if c == nil {
			return types.Snapshot{}, fmt.Errorf("%w: nil contact at index %d", types.ErrInvalidParams, i)
		}
		body, err := json.Marshal(c)
		if err != nil {
			return types.Snapshot{}, fmt.Errorf("encode contact %d: %w", c.VID, err)
		}
		var email sql.NullString
		if e, ok := c.Email(); ok {
			email = sql.NullString{String: e, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, snap.ID, i, c.VID, email, string(body)); err != nil {
			return types.Snapshot{}, fmt.Errorf("insert contact %d: %w", c.VID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Snapshot{}, fmt.Errorf("commit: %w", err)
	}
	return snap, nil
}

// Snapshots lists all snapshots, newest first.
func (s *Store) Snapshots(ctx context.Context) ([]types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot_id, label, contact_count, created_at FROM snapshots ORDER BY snapshot_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := []types.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Snapshot returns the snapshot with the given ID.
func (s *Store) Snapshot(ctx context.Context, id string) (types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return types.Snapshot{}, types.ErrStoreClosed
	}
	return s.snapshotLocked(ctx, id)
}

func (s *Store) snapshotLocked(ctx context.Context, id string) (types.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT snapshot_id, label, contact_count, created_at FROM snapshots WHERE snapshot_id = ?`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Snapshot{}, fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, id)
	}
	return snap, err
}

// SnapshotContacts returns the contacts of a snapshot in saved order.
func (s *Store) SnapshotContacts(ctx context.Context, id string) ([]*types.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}
	bodies, err := s.bodiesLocked(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]*types.Contact, 0, len(bodies))
	for _, body := range bodies {
		var c types.Contact
		if err := json.Unmarshal(body, &c); err != nil {
			return nil, fmt.Errorf("decode stored contact: %w", err)
		}
		out = append(out, &c)
	}
	return out, nil
}

// DeleteSnapshot removes a snapshot and its contacts.
func (s *Store) DeleteSnapshot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.ErrStoreClosed
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE snapshot_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, id)
	}
	return nil
}

// ExportJSONL writes a snapshot's contacts to path, one JSON object per
// line. The file is replaced atomically.
func (s *Store) ExportJSONL(ctx context.Context, id, path string) error {
	s.mu.RLock()
	bodies, err := s.exportBodies(ctx, id)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return writeJSONL(path, bodies)
}

func (s *Store) exportBodies(ctx context.Context, id string) ([]json.RawMessage, error) {
	if s.db == nil {
		return nil, types.ErrStoreClosed
	}
	return s.bodiesLocked(ctx, id)
}

func (s *Store) bodiesLocked(ctx context.Context, id string) ([]json.RawMessage, error) {
	if _, err := s.snapshotLocked(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM snapshot_contacts WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, json.RawMessage(body))
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (types.Snapshot, error) {
	var (
		snap    types.Snapshot
		created string
	)
	if err := r.Scan(&snap.ID, &snap.Label, &snap.Count, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, err
		}
		return snap, fmt.Errorf("scan snapshot: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return snap, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	snap.CreatedAt = t
	return snap, nil
}

// generateUUID generates a new UUID v7 for snapshot IDs. v7 IDs sort by
// creation time.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
