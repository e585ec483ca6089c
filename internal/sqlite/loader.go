package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// ImportJSONL saves the contacts in a JSONL file as a new snapshot. Lines
// may be exported snapshot records or raw API contact objects; malformed
// lines are skipped and counted.
func (s *Store) ImportJSONL(ctx context.Context, label, path string) (types.Snapshot, int, error) {
	records, skipped, err := ReadJSONL(path)
	if err != nil {
		return types.Snapshot{}, skipped, err
	}

	contacts := make([]*types.Contact, 0, len(records))
	for i, rec := range records {
		c := types.DecodeContact(rec)
		if c.VID == 0 {
			return types.Snapshot{}, skipped, fmt.Errorf("%w: record %d has no vid", types.ErrMissingVID, i)
		}
		contacts = append(contacts, c)
	}

	snap, err := s.SaveSnapshot(ctx, label, contacts)
	return snap, skipped, err
}
