package types

import (
	"errors"
	"time"
)

// Snapshot describes a saved set of contacts in the local store.
type Snapshot struct {
	ID        string    `json:"snapshot_id"`
	Label     string    `json:"label"`
	Count     int       `json:"contact_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot store errors.
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrStoreClosed      = errors.New("snapshot store is closed")
)
