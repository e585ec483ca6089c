package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// DefaultListProperties are requested by the recently-updated and
// recently-created lists when the caller names no properties.
var DefaultListProperties = []string{
	"email", "firstname", "lastname", "company", "website", "phone",
	"address", "city", "state", "zip", "hubspot_owner_id",
}

// Service performs contact operations over a Connection.
// It holds no per-call state and is safe for concurrent use when the
// Connection is.
type Service struct {
	conn   types.Connection
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service that issues requests through conn.
func NewService(conn types.Connection, opts ...Option) *Service {
	s := &Service{
		conn:   conn,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "contacts"))
	return s
}

// propertiesBody is the request body of the single-contact write endpoints.
type propertiesBody struct {
	Properties []types.WireProperty `json:"properties"`
}

// Create creates a contact. A non-empty email is stored in the "email"
// property, overriding any value already in props.
// See https://developers.hubspot.com/docs/methods/contacts/create_contact.
func (s *Service) Create(ctx context.Context, email string, props types.Properties) (*types.Contact, error) {
	withEmail := props.Clone()
	if email != "" {
		withEmail.Set(types.PropertyEmail, email)
	}
	raw, err := s.conn.PostJSON(ctx, pathCreate, types.Params{}, propertiesBody{
		Properties: types.EncodeProperties(withEmail),
	})
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "contact created", slog.Int("properties", withEmail.Len()))
	return types.DecodeContact(raw), nil
}

// createOrUpdateResponse is the body returned by the createOrUpdate endpoint.
type createOrUpdateResponse struct {
	VID   int64 `json:"vid"`
	IsNew bool  `json:"isNew"`
}

// CreateOrUpdate creates the contact with the given email or updates the
// existing one, then fetches the full record. The returned contact
// reports through IsNew whether the call created it.
// See https://developers.hubspot.com/docs/methods/contacts/create_or_update.
func (s *Service) CreateOrUpdate(ctx context.Context, email string, props types.Properties) (*types.Contact, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: create or update requires an email", types.ErrInvalidParams)
	}
	raw, err := s.conn.PostJSON(ctx, pathCreateOrUpdate, types.Params{paramContactEmail: email}, propertiesBody{
		Properties: types.EncodeProperties(props),
	})
	if err != nil {
		return nil, err
	}
	var resp createOrUpdateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode create or update response: %w", err)
	}

	contact, err := s.FindByID(ctx, resp.VID)
	if err != nil {
		return nil, err
	}
	contact.SetIsNew(resp.IsNew)
	return contact, nil
}

// ListOptions selects one of the contact lists and pages through it.
type ListOptions struct {
	Recent        bool     // Recently updated contacts.
	RecentCreated bool     // Recently created contacts; wins over Recent.
	Count         int      // Page size; zero leaves the API default.
	VIDOffset     int64    // Paging offset returned by a previous page.
	TimeOffset    int64    // Paging offset for the recent lists.
	Properties    []string // Properties to return.
}

// Page is one page of a contact list.
type Page struct {
	Contacts   []*types.Contact
	HasMore    bool
	VIDOffset  int64
	TimeOffset int64
	Offset     int64 // Offset for the next QuickSearch page.
	Total      int64 // Total matches reported by QuickSearch.
}

// listResponse covers the list and query endpoints.
type listResponse struct {
	Contacts   []json.RawMessage `json:"contacts"`
	HasMore    bool              `json:"has-more"`
	VIDOffset  int64             `json:"vid-offset"`
	TimeOffset int64             `json:"time-offset"`
	Offset     int64             `json:"offset"`
	Total      int64             `json:"total"`
}

func (r listResponse) page() Page {
	p := Page{
		Contacts:   make([]*types.Contact, 0, len(r.Contacts)),
		HasMore:    r.HasMore,
		VIDOffset:  r.VIDOffset,
		TimeOffset: r.TimeOffset,
		Offset:     r.Offset,
		Total:      r.Total,
	}
	for _, c := range r.Contacts {
		p.Contacts = append(p.Contacts, types.DecodeContact(c))
	}
	return p
}

// All returns one page of all, recently updated, or recently created
// contacts.
// See https://developers.hubspot.com/docs/methods/contacts/get_contacts.
func (s *Service) All(ctx context.Context, opts ListOptions) (Page, error) {
	path := pathAll
	params := types.Params{}
	recent := false
	switch {
	case opts.RecentCreated:
		path, recent = pathRecentlyCreated, true
	case opts.Recent:
		path, recent = pathRecentlyUpdated, true
	}

	if opts.Count > 0 {
		params["count"] = opts.Count
	}
	if opts.VIDOffset > 0 {
		params["vidOffset"] = opts.VIDOffset
	}
	if opts.TimeOffset > 0 {
		params["timeOffset"] = opts.TimeOffset
	}
	switch {
	case len(opts.Properties) > 0:
		params["property"] = opts.Properties
	case recent:
		params["property"] = DefaultListProperties
	}

	raw, err := s.conn.GetJSON(ctx, path, params)
	if err != nil {
		return Page{}, err
	}
	var resp listResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Page{}, fmt.Errorf("decode contact list: %w", err)
	}
	return resp.page(), nil
}

// QueryOptions pages through QuickSearch results.
type QueryOptions struct {
	Count      int
	Offset     int64
	Properties []string
}

// QuickSearch runs a free-text search over contact names, emails and
// companies.
// See https://developers.hubspot.com/docs/methods/contacts/search_contacts.
func (s *Service) QuickSearch(ctx context.Context, query string, opts QueryOptions) (Page, error) {
	if query == "" {
		return Page{}, fmt.Errorf("%w: search query must not be empty", types.ErrInvalidParams)
	}
	params := types.Params{"q": query}
	if opts.Count > 0 {
		params["count"] = opts.Count
	}
	if opts.Offset > 0 {
		params["offset"] = opts.Offset
	}
	if len(opts.Properties) > 0 {
		params["property"] = opts.Properties
	}

	raw, err := s.conn.GetJSON(ctx, pathQuery, params)
	if err != nil {
		return Page{}, err
	}
	var resp listResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Page{}, fmt.Errorf("decode query response: %w", err)
	}
	return resp.page(), nil
}
