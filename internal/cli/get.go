package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hubcontacts/pkg/contacts"
	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

type getOptions struct {
	ids    []int64
	emails []string
	utks   []string
}

func newGetCmd(a *app) *cobra.Command {
	var opts getOptions
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up contacts by vid, email or user token",
		Long: `Look up contacts by exactly one kind of key. Repeating the flag switches
to the batch endpoint; batch results keep the order the API returned.

Examples:
  hubcontacts get --id 101
  hubcontacts get --email a@example.com --email b@example.com
  hubcontacts get --utk 1a2b3c`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGet(cmd, opts)
		},
	}
	cmd.Flags().Int64SliceVar(&opts.ids, "id", nil, "contact vid (repeatable)")
	cmd.Flags().StringArrayVar(&opts.emails, "email", nil, "contact email (repeatable)")
	cmd.Flags().StringArrayVar(&opts.utks, "utk", nil, "hubspotutk user token (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("id", "email", "utk")
	cmd.MarkFlagsOneRequired("id", "email", "utk")
	return cmd
}

// lookupKey picks the lookup kind and key shape from the flags: a single
// value is a scalar key, several values a slice.
func (o getOptions) lookupKey() (contacts.LookupKind, any) {
	switch {
	case len(o.ids) == 1:
		return contacts.LookupByID, o.ids[0]
	case len(o.ids) > 1:
		return contacts.LookupByID, o.ids
	case len(o.emails) == 1:
		return contacts.LookupByEmail, o.emails[0]
	case len(o.emails) > 1:
		return contacts.LookupByEmail, o.emails
	case len(o.utks) == 1:
		return contacts.LookupByUTK, o.utks[0]
	default:
		return contacts.LookupByUTK, o.utks
	}
}

func (a *app) runGet(cmd *cobra.Command, opts getOptions) error {
	ctx := cmd.Context()
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	kind, key := opts.lookupKey()
	res, err := svc.Lookup(ctx, kind, key)
	if err != nil {
		return err
	}
	if res.Batch {
		return a.printContacts(cmd, res.Contacts)
	}
	if res.Contact == nil {
		return fmt.Errorf("%w: %s %v", errContactNotFound, kind, key)
	}
	return a.printContact(cmd, res.Contact)
}

// contactStub is a local handle for a contact known only by vid.
func contactStub(vid int64) *types.Contact {
	return &types.Contact{VID: vid, Properties: types.NewProperties()}
}
