package contacts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// BatchLimit is the number of records per call above which the batch
// endpoint slows down. BatchCreateOrUpdate does not split larger inputs.
const BatchLimit = 100

// batchRecord is one element of the batch create-or-update body. Exactly
// one of VID and Email is set.
type batchRecord struct {
	VID        any                  `json:"vid,omitempty"`
	Email      any                  `json:"email,omitempty"`
	Properties []types.WireProperty `json:"properties"`
}

// BatchCreateOrUpdate creates or updates several contacts in one call.
// Each record is keyed by "vid" (an existing contact) or, failing that,
// by "email" (matched or created); vid wins when both are present. The
// key is removed from the record and the rest is sent as properties.
// An empty input, or a record with neither key, fails the whole call
// with ErrInvalidParams before any request is made.
// See https://developers.hubspot.com/docs/methods/contacts/batch_create_or_update.
func (s *Service) BatchCreateOrUpdate(ctx context.Context, records []types.Properties) error {
	body, err := buildBatch(records)
	if err != nil {
		return err
	}
	if len(body) > BatchLimit {
		s.logger.WarnContext(ctx, "batch exceeds recommended size",
			slog.Int("records", len(body)),
			slog.Int("limit", BatchLimit))
	}
	if _, err := s.conn.PostJSON(ctx, pathBatchUpsert, types.Params{}, body); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "batch create or update sent", slog.Int("records", len(body)))
	return nil
}

func buildBatch(records []types.Properties) ([]batchRecord, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: batch create or update needs at least one record", types.ErrInvalidParams)
	}
	body := make([]batchRecord, 0, len(records))
	for i, rec := range records {
		if vid, ok := rec.Get(types.PropertyVID); ok && present(vid) {
			body = append(body, batchRecord{
				VID:        vid,
				Properties: types.EncodeProperties(rec.Without(types.PropertyVID)),
			})
			continue
		}
		if email, ok := rec.Get(types.PropertyEmail); ok && present(email) {
			body = append(body, batchRecord{
				Email:      email,
				Properties: types.EncodeProperties(rec.Without(types.PropertyEmail)),
			})
			continue
		}
		return nil, fmt.Errorf("%w: record %d: expecting vid or email for contact", types.ErrInvalidParams, i)
	}
	return body, nil
}

// present treats nil and false as a missing key.
func present(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}
