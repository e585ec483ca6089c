package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// SearchPageSize is the page size of every search request.
const SearchPageSize = 100

// SearchOption adjusts search requests.
type SearchOption func(*searchRequest)

// WithProperties asks the search endpoint to return the named properties
// instead of its default set.
func WithProperties(names ...string) SearchOption {
	return func(r *searchRequest) {
		r.Properties = append(r.Properties, names...)
	}
}

type filterGroup struct {
	Filters []types.Filter `json:"filters"`
}

type searchRequest struct {
	Limit        int           `json:"limit"`
	After        string        `json:"after,omitempty"`
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties,omitempty"`
}

type searchResponse struct {
	Results []json.RawMessage `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// nextCursor returns the paging.next.after token, or "" on the last page.
func (r searchResponse) nextCursor() string {
	if r.Paging == nil || r.Paging.Next == nil {
		return ""
	}
	return r.Paging.Next.After
}

// Search returns every contact matching filters (ANDed in one filter
// group). It requests pages of SearchPageSize one after another, echoing
// the cursor of each response, until a response carries no cursor. The
// result is the concatenation of all pages in order.
//
// The loop has no page limit; it ends only when the API stops returning
// a cursor, an error occurs, or ctx is done.
// See https://developers.hubspot.com/docs/api/crm/search.
func (s *Service) Search(ctx context.Context, filters []types.Filter, opts ...SearchOption) ([]*types.Contact, error) {
	if filters == nil {
		filters = []types.Filter{}
	}
	req := searchRequest{
		Limit:        SearchPageSize,
		FilterGroups: []filterGroup{{Filters: filters}},
	}
	for _, opt := range opts {
		opt(&req)
	}

	contacts := []*types.Contact{}
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := s.conn.PostJSON(ctx, pathSearch, types.Params{}, req)
		if err != nil {
			return nil, err
		}
		var resp searchResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("decode search page %d: %w", page, err)
		}
		for _, r := range resp.Results {
			contacts = append(contacts, types.DecodeContact(r))
		}
		s.logger.DebugContext(ctx, "search page fetched",
			slog.Int("page", page),
			slog.Int("results", len(resp.Results)))

		next := resp.nextCursor()
		if next == "" {
			return contacts, nil
		}
		req.After = next
	}
}
