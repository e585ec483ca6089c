package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// LookupKind names the key space of a lookup.
type LookupKind int

// Lookup key spaces.
const (
	LookupByID LookupKind = iota + 1
	LookupByEmail
	LookupByUTK
)

// String returns the key space name.
func (k LookupKind) String() string {
	switch k {
	case LookupByID:
		return "id"
	case LookupByEmail:
		return "email"
	case LookupByUTK:
		return "utk"
	default:
		return fmt.Sprintf("LookupKind(%d)", int(k))
	}
}

// LookupResult holds the outcome of Lookup. Exactly one shape is used:
// Contact for a scalar key, Contacts for a collection of keys.
type LookupResult struct {
	Batch    bool
	Contact  *types.Contact   // Nil when an email lookup found nothing.
	Contacts []*types.Contact // In response order.
}

// Lookup dispatches on the shape of key. A scalar key (int, int32 or
// int64 for LookupByID; string otherwise) selects the single-record
// endpoint, a slice selects the batch endpoint. Any other shape fails
// with ErrInvalidParams before a request is made.
func (s *Service) Lookup(ctx context.Context, kind LookupKind, key any) (LookupResult, error) {
	switch kind {
	case LookupByID:
		switch k := key.(type) {
		case int:
			return s.single(s.FindByID(ctx, int64(k)))
		case int32:
			return s.single(s.FindByID(ctx, int64(k)))
		case int64:
			return s.single(s.FindByID(ctx, k))
		case []int:
			vids := make([]int64, len(k))
			for i, v := range k {
				vids[i] = int64(v)
			}
			return s.batch(s.FindByIDs(ctx, vids))
		case []int64:
			return s.batch(s.FindByIDs(ctx, k))
		}
		return LookupResult{}, invalidKey(kind, "integer or slice of integers", key)
	case LookupByEmail:
		switch k := key.(type) {
		case string:
			return s.single(s.FindByEmail(ctx, k))
		case []string:
			return s.batch(s.FindByEmails(ctx, k))
		}
		return LookupResult{}, invalidKey(kind, "string or slice of strings", key)
	case LookupByUTK:
		switch k := key.(type) {
		case string:
			return s.single(s.FindByUTK(ctx, k))
		case []string:
			return s.batch(s.FindByUTKs(ctx, k))
		}
		return LookupResult{}, invalidKey(kind, "string or slice of strings", key)
	}
	return LookupResult{}, fmt.Errorf("%w: unknown lookup kind %s", types.ErrInvalidParams, kind)
}

func (s *Service) single(c *types.Contact, err error) (LookupResult, error) {
	if err != nil {
		return LookupResult{}, err
	}
	return LookupResult{Contact: c}, nil
}

func (s *Service) batch(cs []*types.Contact, err error) (LookupResult, error) {
	if err != nil {
		return LookupResult{}, err
	}
	return LookupResult{Batch: true, Contacts: cs}, nil
}

func invalidKey(kind LookupKind, want string, got any) error {
	return fmt.Errorf("%w: %s lookup expects %s, got %T", types.ErrInvalidParams, kind, want, got)
}

// FindByID fetches one contact by vid.
// See https://developers.hubspot.com/docs/methods/contacts/get_contact.
func (s *Service) FindByID(ctx context.Context, vid int64) (*types.Contact, error) {
	raw, err := s.conn.GetJSON(ctx, pathContactByID, types.Params{paramContactID: vid})
	if err != nil {
		return nil, err
	}
	return types.DecodeContact(raw), nil
}

// FindByIDs fetches several contacts by vid in one request. Contacts the
// API does not know are simply missing from the result.
// See https://developers.hubspot.com/docs/methods/contacts/get_batch_by_vid.
func (s *Service) FindByIDs(ctx context.Context, vids []int64) ([]*types.Contact, error) {
	if len(vids) == 0 {
		return nil, fmt.Errorf("%w: batch lookup needs at least one id", types.ErrInvalidParams)
	}
	raw, err := s.conn.GetJSON(ctx, pathContactsByID, types.Params{paramBatchVID: vids})
	if err != nil {
		return nil, err
	}
	return s.decodeBatch(ctx, raw)
}

// FindByEmail fetches one contact by email. It returns (nil, nil) when
// the contact does not exist.
// See https://developers.hubspot.com/docs/methods/contacts/get_contact_by_email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*types.Contact, error) {
	raw, err := s.conn.GetJSON(ctx, pathContactByEmail, types.Params{paramContactEmail: email})
	if err != nil {
		if IsContactNotFound(err) {
			s.logger.DebugContext(ctx, "contact not found", slog.String("email", email))
			return nil, nil
		}
		return nil, err
	}
	return types.DecodeContact(raw), nil
}

// FindByEmails fetches several contacts by email in one request. It
// returns (nil, nil) when the API reports that the contacts do not exist.
// See https://developers.hubspot.com/docs/methods/contacts/get_batch_by_email.
func (s *Service) FindByEmails(ctx context.Context, emails []string) ([]*types.Contact, error) {
	if len(emails) == 0 {
		return nil, fmt.Errorf("%w: batch lookup needs at least one email", types.ErrInvalidParams)
	}
	raw, err := s.conn.GetJSON(ctx, pathContactsByEmail, types.Params{paramBatchEmail: emails})
	if err != nil {
		if IsContactNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return s.decodeBatch(ctx, raw)
}

// FindByUTK fetches one contact by user token.
// See https://developers.hubspot.com/docs/methods/contacts/get_contact_by_utk.
func (s *Service) FindByUTK(ctx context.Context, utk string) (*types.Contact, error) {
	raw, err := s.conn.GetJSON(ctx, pathContactByUTK, types.Params{paramContactUTK: utk})
	if err != nil {
		return nil, err
	}
	return types.DecodeContact(raw), nil
}

// FindByUTKs always fails. The batch user-token endpoint returns
// unreliable results, so the client refuses to call it.
func (s *Service) FindByUTKs(ctx context.Context, utks []string) ([]*types.Contact, error) {
	return nil, &types.APIError{
		Message: fmt.Sprintf("batch lookup by utk (%s) is not supported", pathContactsByUTK),
		Err:     types.ErrUnsupportedLookup,
	}
}

// decodeBatch turns a {key: contact} response into contacts, keeping the
// order of the response object.
func (s *Service) decodeBatch(ctx context.Context, raw json.RawMessage) ([]*types.Contact, error) {
	members, err := types.OrderedMembers(raw)
	if err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}
	contacts := make([]*types.Contact, 0, len(members))
	for _, m := range members {
		contacts = append(contacts, types.DecodeContact(m.Value))
	}
	s.logger.DebugContext(ctx, "batch lookup decoded", slog.Int("contacts", len(contacts)))
	return contacts, nil
}
