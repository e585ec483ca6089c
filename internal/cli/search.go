package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hubcontacts/pkg/contacts"
	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// queryFlags select contacts for search and export.
type queryFlags struct {
	filters       []string
	properties    []string
	recent        bool
	recentCreated bool
	count         int
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&q.filters, "filter", nil, "filter property:OPERATOR[:value] (repeatable, ANDed)")
	cmd.Flags().StringSliceVar(&q.properties, "property", nil, "properties to return")
}

func (q *queryFlags) parseFilters() ([]types.Filter, error) {
	filters := make([]types.Filter, 0, len(q.filters))
	for _, s := range q.filters {
		f, err := types.ParseFilter(s)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func (q *queryFlags) searchOptions() []contacts.SearchOption {
	if len(q.properties) == 0 {
		return nil
	}
	return []contacts.SearchOption{contacts.WithProperties(q.properties...)}
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		q      queryFlags
		query  string
		offset int64
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search contacts",
		Long: `Search contacts with CRM search filters, following every result page,
or run a free-text query with --query (one page per call).

Operators: EQ NEQ LT LTE GT GTE BETWEEN IN NOT_IN HAS_PROPERTY
NOT_HAS_PROPERTY CONTAINS_TOKEN NOT_CONTAINS_TOKEN.

Examples:
  hubcontacts search --filter lifecyclestage:EQ:customer
  hubcontacts search --filter createdate:BETWEEN:1700000000000,1710000000000
  hubcontacts search --filter email:HAS_PROPERTY --property email,firstname
  hubcontacts search --query ada`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if query != "" {
				return a.runQuickSearch(cmd, query, contacts.QueryOptions{
					Count: q.count, Offset: offset, Properties: q.properties,
				})
			}
			filters, err := q.parseFilters()
			if err != nil {
				return err
			}
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			found, err := svc.Search(ctx, filters, q.searchOptions()...)
			if err != nil {
				return err
			}
			return a.printContacts(cmd, found)
		},
	}
	q.register(cmd)
	cmd.Flags().StringVar(&query, "query", "", "free-text query over names, emails and companies")
	cmd.Flags().IntVar(&q.count, "count", 0, "page size for --query")
	cmd.Flags().Int64Var(&offset, "offset", 0, "offset from a previous --query page")
	cmd.MarkFlagsMutuallyExclusive("query", "filter")
	return cmd
}

func (a *app) runQuickSearch(cmd *cobra.Command, query string, opts contacts.QueryOptions) error {
	svc, err := a.service(cmd.Context())
	if err != nil {
		return err
	}
	page, err := svc.QuickSearch(cmd.Context(), query, opts)
	if err != nil {
		return err
	}
	return a.printPage(cmd, page)
}

func newListCmd(a *app) *cobra.Command {
	var opts contacts.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of contacts",
		Long: `List one page of all contacts, recently updated contacts (--recent) or
recently created contacts (--recent-created). Pass the offsets printed
after the table to fetch the next page.`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			page, err := svc.All(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.printPage(cmd, page)
		},
	}
	cmd.Flags().BoolVar(&opts.Recent, "recent", false, "recently updated contacts")
	cmd.Flags().BoolVar(&opts.RecentCreated, "recent-created", false, "recently created contacts")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "page size")
	cmd.Flags().Int64Var(&opts.VIDOffset, "vid-offset", 0, "vid offset from a previous page")
	cmd.Flags().Int64Var(&opts.TimeOffset, "time-offset", 0, "time offset from a previous recent page")
	cmd.Flags().StringSliceVar(&opts.Properties, "property", nil, "properties to return")
	cmd.MarkFlagsMutuallyExclusive("recent", "recent-created")
	return cmd
}

// pageJSON is the --json shape of a list page.
type pageJSON struct {
	Contacts   []*types.Contact `json:"contacts"`
	HasMore    bool             `json:"has-more"`
	VIDOffset  int64            `json:"vid-offset,omitempty"`
	TimeOffset int64            `json:"time-offset,omitempty"`
	Offset     int64            `json:"offset,omitempty"`
	Total      int64            `json:"total,omitempty"`
}

func (a *app) printPage(cmd *cobra.Command, p contacts.Page) error {
	if a.jsonMode {
		return printJSON(cmd.OutOrStdout(), pageJSON(p))
	}
	if err := a.printContacts(cmd, p.Contacts); err != nil {
		return err
	}
	if p.HasMore {
		fmt.Fprintf(cmd.OutOrStdout(), "\nmore: vid-offset=%d time-offset=%d offset=%d\n",
			p.VIDOffset, p.TimeOffset, p.Offset)
	}
	return nil
}

// collectAll follows list pages until the API reports no more.
func collectAll(ctx context.Context, svc *contacts.Service, opts contacts.ListOptions) ([]*types.Contact, error) {
	var out []*types.Contact
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := svc.All(ctx, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Contacts...)
		if !page.HasMore || (page.VIDOffset == opts.VIDOffset && page.TimeOffset == opts.TimeOffset) {
			return out, nil
		}
		opts.VIDOffset, opts.TimeOffset = page.VIDOffset, page.TimeOffset
	}
}
