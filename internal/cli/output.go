package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

var errContactNotFound = errors.New("contact not found")

// textColumns are shown by the table output, after VID.
var textColumns = []string{"email", "firstname", "lastname", "company"}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printContact writes one contact: JSON in --json mode, otherwise one
// "name: value" line per property.
func (a *app) printContact(cmd *cobra.Command, c *types.Contact) error {
	w := cmd.OutOrStdout()
	if a.jsonMode {
		return printJSON(w, c)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "vid:\t%d\n", c.VID)
	if isNew, known := c.IsNew(); known {
		fmt.Fprintf(tw, "is-new:\t%t\n", isNew)
	}
	for _, k := range c.Properties.Keys() {
		v, _ := c.Properties.Get(k)
		fmt.Fprintf(tw, "%s:\t%s\n", k, formatValue(v))
	}
	return tw.Flush()
}

// printContacts writes contacts as a JSON array or a table.
func (a *app) printContacts(cmd *cobra.Command, cs []*types.Contact) error {
	w := cmd.OutOrStdout()
	if a.jsonMode {
		if cs == nil {
			cs = []*types.Contact{}
		}
		return printJSON(w, cs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VID\t"+strings.ToUpper(strings.Join(textColumns, "\t")))
	for _, c := range cs {
		row := []string{strconv.FormatInt(c.VID, 10)}
		for _, col := range textColumns {
			v, _ := c.Properties.Get(col)
			row = append(row, formatValue(v))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// printMessage writes a status line, or {"status": msg} in --json mode.
func (a *app) printMessage(cmd *cobra.Command, msg string, fields map[string]any) error {
	if a.jsonMode {
		out := map[string]any{"status": msg}
		for k, v := range fields {
			out[k] = v
		}
		return printJSON(cmd.OutOrStdout(), out)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
	return err
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

// parseAssignments turns "name=value" arguments into ordered properties.
// Values are kept as strings; "name=" sets an empty string.
func parseAssignments(args []string) (types.Properties, error) {
	props := types.NewProperties()
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return props, fmt.Errorf("%w: %q (expected name=value)", types.ErrInvalidParams, arg)
		}
		props.Set(name, value)
	}
	return props, nil
}

// parseVID parses a positional contact VID.
func parseVID(s string) (int64, error) {
	vid, err := strconv.ParseInt(s, 10, 64)
	if err != nil || vid <= 0 {
		return 0, fmt.Errorf("%w: vid must be a positive integer, got %q", types.ErrInvalidParams, s)
	}
	return vid, nil
}

// userArgs wraps a positional-args validator so its errors exit with
// exitUserError.
func userArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return userError(fn(cmd, args))
	}
}
