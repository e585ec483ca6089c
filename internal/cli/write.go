package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hubcontacts/internal/logger"
	"github.com/mesh-intelligence/hubcontacts/internal/sqlite"
	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		email    string
		orUpdate bool
	)
	cmd := &cobra.Command{
		Use:   "create [name=value...]",
		Short: "Create a contact",
		Long: `Create a contact from name=value property assignments.

With --or-update the contact is updated when one with the email already
exists; the output then reports is-new.

Examples:
  hubcontacts create --email a@example.com firstname=Ada lastname=Lovelace
  hubcontacts create --or-update --email a@example.com company=Analytical`,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseAssignments(args)
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			var c *types.Contact
			if orUpdate {
				c, err = svc.CreateOrUpdate(cmd.Context(), email, props)
			} else {
				c, err = svc.Create(cmd.Context(), email, props)
			}
			if err != nil {
				return err
			}
			return a.printContact(cmd, c)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().BoolVar(&orUpdate, "or-update", false, "update the contact with this email if it exists")
	return cmd
}

func newUpsertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upsert <file.jsonl>",
		Short: "Create or update contacts in one batch",
		Long: `Send every line of a JSONL file to the batch create-or-update endpoint.
Each line is a flat property object that must carry "vid" or "email";
"vid" wins when both are present. Malformed lines are skipped.

Example line:
  {"email":"a@example.com","firstname":"Ada"}`,
		Args: userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, skipped, err := sqlite.ReadJSONL(args[0])
			if err != nil {
				return userError(err)
			}
			if skipped > 0 {
				logger.FromContext(cmd.Context()).Warn("skipped malformed lines",
					"file", args[0], "count", skipped)
			}

			records := make([]types.Properties, 0, len(raws))
			for i, raw := range raws {
				var p types.Properties
				if err := json.Unmarshal(raw, &p); err != nil {
					return fmt.Errorf("%w: record %d: %v", types.ErrInvalidParams, i, err)
				}
				records = append(records, p)
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.BatchCreateOrUpdate(cmd.Context(), records); err != nil {
				return err
			}
			return a.printMessage(cmd, fmt.Sprintf("upserted %d contacts", len(records)),
				map[string]any{"records": len(records), "skipped": skipped})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <vid> name=value...",
		Short: "Update contact properties",
		Long: `Fetch the contact, send the new property values and print the contact
with the values merged in locally. The contact is not re-read after the
update.`,
		Args: userArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			vid, err := parseVID(args[0])
			if err != nil {
				return err
			}
			props, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			c, err := svc.FindByID(ctx, vid)
			if err != nil {
				return err
			}
			c, err = svc.Update(ctx, c, props)
			if err != nil {
				return err
			}
			return a.printContact(cmd, c)
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <vid>",
		Short: "Archive a contact",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			vid, err := parseVID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Destroy(cmd.Context(), contactStub(vid)); err != nil {
				return err
			}
			return a.printMessage(cmd, fmt.Sprintf("deleted contact %d", vid), map[string]any{"vid": vid})
		},
	}
}

func newMergeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <primary-vid> <secondary-vid>",
		Short: "Merge the secondary contact into the primary",
		Args:  userArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			primary, err := parseVID(args[0])
			if err != nil {
				return err
			}
			secondary, err := parseVID(args[1])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Merge(cmd.Context(), primary, secondary); err != nil {
				return err
			}
			return a.printMessage(cmd, fmt.Sprintf("merged contact %d into %d", secondary, primary),
				map[string]any{"primary": primary, "secondary": secondary})
		},
	}
}
