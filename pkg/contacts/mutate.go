package contacts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// mergeBody is the request body of the merge endpoint.
type mergeBody struct {
	VIDToMerge int64 `json:"vidToMerge"`
}

// Merge merges the secondary contact into the primary. The API copies the
// secondary's properties onto the primary and keeps the primary's email.
// The response is not read and no local Contact is changed; fetch the
// primary again to see the result.
// See https://developers.hubspot.com/docs/methods/contacts/merge-contacts.
func (s *Service) Merge(ctx context.Context, primary, secondary int64) error {
	if primary == 0 || secondary == 0 {
		return fmt.Errorf("%w: merge needs two vids", types.ErrInvalidParams)
	}
	if primary == secondary {
		return fmt.Errorf("%w: cannot merge contact %d into itself", types.ErrInvalidParams, primary)
	}
	_, err := s.conn.PostJSON(ctx, pathMerge,
		types.Params{paramContactID: primary, types.ParamNoParse: true},
		mergeBody{VIDToMerge: secondary})
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "contacts merged",
		slog.Int64("primary", primary),
		slog.Int64("secondary", secondary))
	return nil
}

// Update sends props for c and, once the call succeeds, merges the same
// values into c.Properties. The response body is ignored: the local
// contact shows what was sent, not what the API stored.
// See https://developers.hubspot.com/docs/methods/contacts/update_contact.
func (s *Service) Update(ctx context.Context, c *types.Contact, props types.Properties) (*types.Contact, error) {
	if err := checkLive(c); err != nil {
		return c, err
	}
	_, err := s.conn.PostJSON(ctx, pathUpdate, types.Params{paramContactID: c.VID}, propertiesBody{
		Properties: types.EncodeProperties(props),
	})
	if err != nil {
		return c, err
	}
	c.Properties.Merge(props)
	return c, nil
}

// Destroy archives c and marks it destroyed.
// See https://developers.hubspot.com/docs/methods/contacts/delete_contact.
func (s *Service) Destroy(ctx context.Context, c *types.Contact) error {
	if err := checkLive(c); err != nil {
		return err
	}
	if _, err := s.conn.DeleteJSON(ctx, pathDestroy, types.Params{paramContactID: c.VID}); err != nil {
		return err
	}
	c.MarkDestroyed()
	s.logger.DebugContext(ctx, "contact archived", slog.Int64("vid", c.VID))
	return nil
}

// checkLive rejects contacts that cannot be written to.
func checkLive(c *types.Contact) error {
	switch {
	case c == nil:
		return fmt.Errorf("%w: nil contact", types.ErrInvalidParams)
	case c.Destroyed():
		return types.ErrContactDestroyed
	case c.VID == 0:
		return types.ErrMissingVID
	}
	return nil
}
